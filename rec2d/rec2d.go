// Package rec2d reconstructs 2D real-world coordinates from digitized
// pixel coordinates using 8-parameter DLT calibrations, one parameter
// set per frame.
package rec2d

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

var (
	ErrParamsFile = zerr.New("cannot read DLT parameters file")
	ErrPixelFile  = zerr.New("cannot read pixel coordinates file")
)

// Params holds one 8-parameter 2D DLT calibration (a0..a7).
type Params [8]float64

// Solve reconstructs a single point. For a pixel (x, y) it solves
//
//	[a0-x*a6  a1-x*a7] [X]   [x-a2]
//	[a3-y*a6  a4-y*a7] [Y] = [y-a5]
//
// and returns (NaN, NaN) when the system is singular.
func (a Params) Solve(x, y float64) (float64, float64) {
	m00 := a[0] - x*a[6]
	m01 := a[1] - x*a[7]
	m10 := a[3] - y*a[6]
	m11 := a[4] - y*a[7]
	det := m00*m11 - m01*m10
	if det == 0 {
		return math.NaN(), math.NaN()
	}
	b0 := x - a[2]
	b1 := y - a[5]
	return (b0*m11 - b1*m01) / det, (b1*m00 - b0*m10) / det
}

// SolvePoints reconstructs a row of pixel points with one calibration.
func (a Params) SolvePoints(points [][2]float64) [][2]float64 {
	out := make([][2]float64, len(points))
	for i, p := range points {
		x, y := a.Solve(p[0], p[1])
		out[i] = [2]float64{x, y}
	}
	return out
}

func (a Params) hasNaN() bool {
	for _, v := range a {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// ParamsTable maps frame numbers to their DLT calibration. Frames whose
// row contains NaN parameters are treated as absent.
type ParamsTable struct {
	byFrame map[int]Params
}

// LoadParams reads a DLT parameters file: a header row followed by
// `frame,a0,...,a7` rows. Empty cells parse as NaN.
func LoadParams(path string) (*ParamsTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, zerr.Wrap(ErrParamsFile, err.Error())
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, zerr.Wrap(ErrParamsFile, err.Error())
	}
	if len(records) < 2 {
		return nil, zerr.With(ErrParamsFile, "reason", "no data rows")
	}

	table := &ParamsTable{byFrame: make(map[int]Params)}
	for _, record := range records[1:] {
		if len(record) < 9 {
			return nil, zerr.With(ErrParamsFile, "reason", fmt.Sprintf("row has %d columns, want 9", len(record)))
		}
		frame, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, zerr.Wrap(ErrParamsFile, err.Error())
		}
		var params Params
		for i := 0; i < 8; i++ {
			params[i] = parseCell(record[i+1])
		}
		table.byFrame[frame] = params
	}
	return table, nil
}

// Lookup returns the calibration for a frame. The second return value is
// false when the frame has no row or its row contains NaN.
func (t *ParamsTable) Lookup(frame int) (Params, bool) {
	params, ok := t.byFrame[frame]
	if !ok || params.hasNaN() {
		return Params{}, false
	}
	return params, true
}

func parseCell(cell string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return math.NaN()
	}
	return value
}

// ProcessFile reconstructs one pixel coordinates CSV (`frame,x,y,...`
// with coordinate pairs after the frame column) and writes the result to
// outPath with the input's header. Frames without a usable calibration
// produce an all-NaN coordinate row.
func ProcessFile(table *ParamsTable, pixelPath, outPath string) error {
	file, err := os.Open(pixelPath)
	if err != nil {
		return zerr.Wrap(ErrPixelFile, err.Error())
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return zerr.Wrap(ErrPixelFile, err.Error())
	}
	if len(records) == 0 {
		return zerr.With(ErrPixelFile, "reason", "empty file")
	}
	header := records[0]
	columns := len(header)

	var builder strings.Builder
	builder.WriteString(strings.Join(header, ","))
	builder.WriteByte('\n')

	for _, record := range records[1:] {
		frame, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return zerr.Wrap(ErrPixelFile, err.Error())
		}
		builder.WriteString(strconv.Itoa(frame))

		params, ok := table.Lookup(frame)
		if !ok {
			for i := 1; i < columns; i++ {
				builder.WriteString(",NaN")
			}
			builder.WriteByte('\n')
			continue
		}

		points := make([][2]float64, 0, (len(record)-1)/2)
		for i := 1; i+1 < len(record); i += 2 {
			points = append(points, [2]float64{parseCell(record[i]), parseCell(record[i+1])})
		}
		for _, point := range params.SolvePoints(points) {
			builder.WriteString(",")
			builder.WriteString(formatCoord(point[0]))
			builder.WriteString(",")
			builder.WriteString(formatCoord(point[1]))
		}
		builder.WriteByte('\n')
	}

	return os.WriteFile(outPath, []byte(builder.String()), 0644)
}

func formatCoord(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// ProcessDirectory reconstructs every .csv file in a directory into a
// fresh `Rec2D_<timestamp>` subdirectory, naming each output
// `<name>_<timestamp>.2d`. It returns the output directory path.
func ProcessDirectory(table *ParamsTable, directory string, now time.Time) (string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return "", zerr.Wrap(ErrPixelFile, err.Error())
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".csv") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	timestamp := now.Format("20060102_150405")
	outputDir := filepath.Join(directory, "Rec2D_"+timestamp)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	for _, name := range names {
		base := strings.TrimSuffix(name, ".csv")
		outPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.2d", base, timestamp))
		if err := ProcessFile(table, filepath.Join(directory, name), outPath); err != nil {
			return "", err
		}
	}
	return outputDir, nil
}
