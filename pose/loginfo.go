package pose

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LogInfo summarizes one processing run for the `log_info.txt` file
// written next to the landmark CSVs.
type LogInfo struct {
	VideoPath       string
	OutputVideoPath string
	Codec           string
	Width           int
	Height          int
	FPS             float64
	TotalFrames     int
	ExecutionTime   time.Duration
	Configuration   string
	MissingFrames   int
}

// Write stores the summary as `log_info.txt` in the output directory.
func (l LogInfo) Write(outputDir string) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Video Path: %s\n", l.VideoPath)
	fmt.Fprintf(&builder, "Output Video Path: %s\n", l.OutputVideoPath)
	fmt.Fprintf(&builder, "Codec: %s\n", l.Codec)
	fmt.Fprintf(&builder, "Resolution: %dx%d\n", l.Width, l.Height)
	fmt.Fprintf(&builder, "FPS: %g\n", l.FPS)
	fmt.Fprintf(&builder, "Total Frames: %d\n", l.TotalFrames)
	fmt.Fprintf(&builder, "Execution Time: %.2f seconds\n", l.ExecutionTime.Seconds())
	fmt.Fprintf(&builder, "Configuration: %s\n", l.Configuration)
	if l.MissingFrames > 0 {
		fmt.Fprintf(&builder, "Frames with missing data (NaN inserted): %d\n", l.MissingFrames)
	}
	return os.WriteFile(filepath.Join(outputDir, "log_info.txt"), []byte(builder.String()), 0644)
}
