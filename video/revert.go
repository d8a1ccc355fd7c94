package video

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Layout names the CSV column convention of a landmark file.
type Layout string

const (
	// LayoutMediaPipe pairs columns by the `_x`/`_y` suffix.
	LayoutMediaPipe Layout = "mediapipe"
	// LayoutYOLO finds `ID_<n>` columns and pairs `X_<n>`/`Y_<n>`.
	LayoutYOLO Layout = "yolo"
	// LayoutVaila pairs any column ending in x with its y counterpart,
	// case-insensitive on the suffix.
	LayoutVaila Layout = "vaila"
)

var (
	ErrPixelCSV      = zerr.New("cannot read pixel coordinates CSV")
	ErrUnknownLayout = zerr.New("unknown CSV layout")
)

// RevertFile maps every coordinate pair of a landmark CSV back to
// original-video space and writes the result, preserving column order
// and leaving non-numeric cells untouched.
func RevertFile(metadataPath, pixelPath, outPath string, layout Layout) error {
	metadata, err := LoadMetadata(metadataPath)
	if err != nil {
		return err
	}

	file, err := os.Open(pixelPath)
	if err != nil {
		return zerr.Wrap(ErrPixelCSV, err.Error())
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return zerr.Wrap(ErrPixelCSV, err.Error())
	}
	if len(records) == 0 {
		return zerr.With(ErrPixelCSV, "reason", "empty file")
	}

	reverted, err := Revert(metadata, records, layout)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	writer := csv.NewWriter(out)
	if err := writer.WriteAll(reverted); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// Revert maps the coordinate columns of parsed CSV records (header
// first) back to original-video space.
func Revert(metadata *Metadata, records [][]string, layout Layout) ([][]string, error) {
	header := records[0]
	pairs, err := coordinatePairs(header, layout)
	if err != nil {
		return nil, err
	}

	out := make([][]string, len(records))
	out[0] = append([]string(nil), header...)
	for r := 1; r < len(records); r++ {
		row := append([]string(nil), records[r]...)
		for _, pair := range pairs {
			if pair.x >= len(row) || pair.y >= len(row) {
				continue
			}
			x, okX := parseCoord(row[pair.x])
			y, okY := parseCoord(row[pair.y])
			if !okX || !okY {
				continue
			}
			originalX, originalY := metadata.ToOriginal(x, y)
			row[pair.x] = formatCoord(originalX)
			row[pair.y] = formatCoord(originalY)
		}
		out[r] = row
	}
	return out, nil
}

type columnPair struct {
	x, y int
}

func coordinatePairs(header []string, layout Layout) ([]columnPair, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	var pairs []columnPair
	switch layout {
	case LayoutMediaPipe:
		for i, name := range header {
			if !strings.HasSuffix(name, "_x") {
				continue
			}
			if j, ok := index[strings.ReplaceAll(name, "_x", "_y")]; ok {
				pairs = append(pairs, columnPair{i, j})
			}
		}
	case LayoutYOLO:
		for _, name := range header {
			if !strings.HasPrefix(name, "ID_") {
				continue
			}
			id := strings.SplitN(name, "_", 2)[1]
			i, okX := index["X_"+id]
			j, okY := index["Y_"+id]
			if okX && okY {
				pairs = append(pairs, columnPair{i, j})
			}
		}
	case LayoutVaila:
		for i, name := range header {
			lower := strings.ToLower(name)
			if !strings.HasSuffix(lower, "x") {
				continue
			}
			base := name[:len(name)-1]
			j, ok := index[base+"y"]
			if !ok {
				j, ok = index[base+"Y"]
			}
			if ok {
				pairs = append(pairs, columnPair{i, j})
			}
		}
	default:
		return nil, zerr.With(ErrUnknownLayout, "layout", string(layout))
	}
	return pairs, nil
}

func parseCoord(cell string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(value) {
		return 0, false
	}
	return value, true
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
