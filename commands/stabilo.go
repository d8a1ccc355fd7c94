package commands

import (
	"encoding/csv"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vaila-multimodaltoolbox/vaila/stabilo"
)

func (c *CLI) newStabiloCmd() *cobra.Command {
	var fs float64

	cmd := &cobra.Command{
		Use:   "stabilo <cop.csv>",
		Short: "Compute stabilogram metrics from a CoP series",
		Long: "Reads a center-of-pressure CSV (medio-lateral and antero-posterior\n" +
			"columns) and writes the sway metrics next to it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			copX, copY, err := readCopSeries(args[0])
			if err != nil {
				return err
			}
			metrics := stabilo.ComputeMetrics(copX, copY, fs)
			outputBase := strings.TrimSuffix(args[0], ".csv")
			if err := stabilo.SaveCSV(metrics, outputBase); err != nil {
				return err
			}
			for _, metric := range metrics {
				cmd.Printf("%s: %g\n", metric.Name, metric.Value)
			}
			cmd.Println("Wrote " + outputBase + "_metrics.csv")
			return nil
		},
	}
	cmd.Flags().Float64Var(&fs, "fs", 100, "sampling frequency in Hz")
	return cmd
}

// readCopSeries reads the first two numeric columns of every row,
// skipping a header if present.
func readCopSeries(path string) (copX, copY []float64, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if errX != nil || errY != nil {
			continue
		}
		copX = append(copX, x)
		copY = append(copY, y)
	}
	if len(copX) < 2 {
		return nil, nil, errors.New("no usable CoP samples in " + path)
	}
	return copX, copY, nil
}
