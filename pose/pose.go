// Package pose reads and writes the landmark CSVs produced by the
// markerless 2D analysis pipeline. Pose inference itself runs inside the
// provisioned Python environment; this package owns the data layer: the
// 33-landmark layout, normalized and pixel coordinate files, and the run
// summary log.
package pose

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// LandmarkNames lists the 33 MediaPipe pose landmarks in model order.
var LandmarkNames = []string{
	"nose",
	"left_eye_inner",
	"left_eye",
	"left_eye_outer",
	"right_eye_inner",
	"right_eye",
	"right_eye_outer",
	"left_ear",
	"right_ear",
	"mouth_left",
	"mouth_right",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_wrist",
	"right_wrist",
	"left_pinky",
	"right_pinky",
	"left_index",
	"right_index",
	"left_thumb",
	"right_thumb",
	"left_hip",
	"right_hip",
	"left_knee",
	"right_knee",
	"left_ankle",
	"right_ankle",
	"left_heel",
	"right_heel",
	"left_foot_index",
	"right_foot_index",
}

var ErrLandmarkCSV = zerr.New("cannot read landmark CSV")

// Landmark is one normalized landmark (x, y in [0, 1], z relative).
type Landmark struct {
	X, Y, Z float64
}

// Frame holds one video frame's landmarks. A nil Landmarks slice marks a
// frame where detection found nobody; it serializes as NaN columns.
type Frame struct {
	Index     int
	Landmarks []Landmark
}

// Missing reports whether the frame has no detected landmarks.
func (f Frame) Missing() bool { return len(f.Landmarks) == 0 }

// Header returns the CSV header shared by the normalized and pixel
// files: frame_index plus x/y/z columns per landmark.
func Header() string {
	parts := make([]string, 0, 1+len(LandmarkNames))
	parts = append(parts, "frame_index")
	for _, name := range LandmarkNames {
		parts = append(parts, fmt.Sprintf("%s_x,%s_y,%s_z", name, name, name))
	}
	return strings.Join(parts, ",")
}

// WriteNormCSV writes the normalized landmark file (`*_mp_norm.csv`),
// six decimal places per value, `NaN` for missing frames.
func WriteNormCSV(path string, frames []Frame) error {
	var builder strings.Builder
	builder.WriteString(Header())
	builder.WriteByte('\n')
	for _, frame := range frames {
		builder.WriteString(strconv.Itoa(frame.Index))
		if frame.Missing() {
			writeNaNColumns(&builder)
		} else {
			for _, landmark := range frame.Landmarks {
				writeNormValue(&builder, landmark.X)
				writeNormValue(&builder, landmark.Y)
				writeNormValue(&builder, landmark.Z)
			}
		}
		builder.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(builder.String()), 0644)
}

// WritePixelCSV writes the pixel landmark file (`*_mp_pixel.csv`):
// integer x/y obtained by truncating the scaled normalized coordinates,
// z passed through, `NaN` for missing frames.
func WritePixelCSV(path string, frames []Frame, width, height int) error {
	var builder strings.Builder
	builder.WriteString(Header())
	builder.WriteByte('\n')
	for _, frame := range frames {
		builder.WriteString(strconv.Itoa(frame.Index))
		if frame.Missing() {
			writeNaNColumns(&builder)
		} else {
			for _, landmark := range frame.Landmarks {
				x, y := ToPixel(landmark, width, height)
				builder.WriteString("," + strconv.Itoa(x))
				builder.WriteString("," + strconv.Itoa(y))
				if math.IsNaN(landmark.Z) {
					builder.WriteString(",NaN")
				} else {
					builder.WriteString("," + strconv.FormatFloat(landmark.Z, 'g', -1, 64))
				}
			}
		}
		builder.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(builder.String()), 0644)
}

// ToPixel converts a normalized landmark to pixel coordinates,
// truncating toward zero.
func ToPixel(landmark Landmark, width, height int) (x, y int) {
	return int(landmark.X * float64(width)), int(landmark.Y * float64(height))
}

func writeNormValue(builder *strings.Builder, v float64) {
	if math.IsNaN(v) {
		builder.WriteString(",NaN")
		return
	}
	builder.WriteString("," + strconv.FormatFloat(v, 'f', 6, 64))
}

func writeNaNColumns(builder *strings.Builder) {
	for range LandmarkNames {
		builder.WriteString(",NaN,NaN,NaN")
	}
}

// ReadNormCSV loads a normalized landmark file back into frames. NaN
// rows come back as missing frames.
func ReadNormCSV(path string) ([]Frame, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.Wrap(ErrLandmarkCSV, err.Error())
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) == 0 || lines[0] != Header() {
		return nil, zerr.With(ErrLandmarkCSV, "reason", "unexpected header")
	}

	frames := make([]Frame, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cells := strings.Split(line, ",")
		if len(cells) != 1+3*len(LandmarkNames) {
			return nil, zerr.With(ErrLandmarkCSV, "reason", fmt.Sprintf("row has %d columns", len(cells)))
		}
		index, err := strconv.Atoi(cells[0])
		if err != nil {
			return nil, zerr.Wrap(ErrLandmarkCSV, err.Error())
		}
		frame := Frame{Index: index}
		missing := true
		landmarks := make([]Landmark, len(LandmarkNames))
		for i := range LandmarkNames {
			landmarks[i] = Landmark{
				X: parseValue(cells[1+3*i]),
				Y: parseValue(cells[2+3*i]),
				Z: parseValue(cells[3+3*i]),
			}
			if !math.IsNaN(landmarks[i].X) {
				missing = false
			}
		}
		if !missing {
			frame.Landmarks = landmarks
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func parseValue(cell string) float64 {
	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return value
}

// CountMissing returns how many frames carry no landmarks.
func CountMissing(frames []Frame) int {
	count := 0
	for _, frame := range frames {
		if frame.Missing() {
			count++
		}
	}
	return count
}
