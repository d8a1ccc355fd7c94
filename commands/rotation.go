package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vaila-multimodaltoolbox/vaila/rotation"
)

func (c *CLI) newRotationCmd() *cobra.Command {
	var config string

	cmd := &cobra.Command{
		Use:   "rotation <markers.csv>",
		Short: "Compute segment orientations from three-marker rows",
		Long: "Reads rows of nine coordinates (three markers, x y z each, after an\n" +
			"optional frame column), builds the orthonormal basis for the chosen\n" +
			"configuration and writes Euler angles and quaternions per frame.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath := strings.TrimSuffix(args[0], ".csv") + "_rotation.csv"
			if err := writeRotations(args[0], outPath, rotation.Config(config)); err != nil {
				return err
			}
			cmd.Println("Wrote " + outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&config, "config", "A", "basis configuration (A, B, C or D)")
	return cmd
}

func writeRotations(inPath, outPath string, config rotation.Config) error {
	file, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	defer writer.Flush()
	if err := writer.Write([]string{
		"frame",
		"euler_x", "euler_y", "euler_z",
		"quat_x", "quat_y", "quat_z", "quat_w",
	}); err != nil {
		return err
	}

	frame := 0
	for _, record := range records {
		points, ok := parseMarkerRow(record)
		if !ok {
			// header or malformed row
			continue
		}
		basis, _, err := rotation.Basis(config, points[0], points[1], points[2])
		if err != nil {
			return err
		}
		r := rotation.RotationBetween(rotation.Canonical(), basis)
		ex, ey, ez := rotation.EulerXYZ(r)
		q := rotation.Quaternion(r)
		row := []string{
			strconv.Itoa(frame),
			formatAngle(ex), formatAngle(ey), formatAngle(ez),
			formatAngle(q[0]), formatAngle(q[1]), formatAngle(q[2]), formatAngle(q[3]),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
		frame++
	}
	return writer.Error()
}

// parseMarkerRow extracts three xyz markers from the last nine numeric
// columns, tolerating a leading frame column.
func parseMarkerRow(record []string) ([3]rotation.Vec3, bool) {
	var points [3]rotation.Vec3
	if len(record) < 9 {
		return points, false
	}
	cells := record[len(record)-9:]
	values := make([]float64, 9)
	for i, cell := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return points, false
		}
		values[i] = v
	}
	for p := 0; p < 3; p++ {
		points[p] = rotation.Vec3{values[p*3], values[p*3+1], values[p*3+2]}
	}
	return points, true
}

func formatAngle(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
