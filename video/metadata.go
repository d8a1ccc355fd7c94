// Package video handles the resize/crop metadata sidecars written next
// to processed videos and maps pixel coordinates between processed and
// original video space, including batch reversion of landmark CSVs.
package video

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

var (
	ErrMetadata = zerr.New("cannot read video metadata")
	ErrFfprobe  = zerr.New("ffprobe failed")
	ErrFfmpeg   = zerr.New("ffmpeg failed")
	ErrBadScale = zerr.New("scale factor must be a positive integer")
)

// Crop is the region of interest cut from the original frame.
type Crop struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Metadata is the JSON sidecar describing how a video was processed.
// Coordinates measured on the processed video can be mapped back to the
// original with ToOriginal.
type Metadata struct {
	OriginalVideo  string  `json:"original_video"`
	OriginalWidth  int     `json:"original_width"`
	OriginalHeight int     `json:"original_height"`
	OriginalFPS    float64 `json:"original_fps"`
	OriginalFrames int     `json:"original_frames"`
	ScaleFactor    int     `json:"scale_factor"`
	Crop           *Crop   `json:"crop,omitempty"`
	CropApplied    bool    `json:"crop_applied"`
	OutputWidth    int     `json:"output_width"`
	OutputHeight   int     `json:"output_height"`
	OutputVideo    string  `json:"output_video"`
}

// MetadataPath returns the sidecar path for an output video:
// `<output without extension>_metadata.json`.
func MetadataPath(outputVideo string) string {
	ext := filepath.Ext(outputVideo)
	return strings.TrimSuffix(outputVideo, ext) + "_metadata.json"
}

// LoadMetadata reads a sidecar file.
func LoadMetadata(path string) (*Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.Wrap(ErrMetadata, err.Error())
	}
	var metadata Metadata
	if err := json.Unmarshal(content, &metadata); err != nil {
		return nil, zerr.Wrap(ErrMetadata, err.Error())
	}
	return &metadata, nil
}

// Write stores the sidecar next to the output video.
func (m *Metadata) Write(path string) error {
	content, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(content, '\n'), 0644)
}

// ToOriginal maps a point from processed-video space back to the
// original video: divide by the scale factor, then add the crop offset
// when a crop was applied.
func (m *Metadata) ToOriginal(x, y float64) (float64, float64) {
	scale := float64(m.ScaleFactor)
	originalX := x / scale
	originalY := y / scale
	if m.CropApplied && m.Crop != nil {
		originalX += float64(m.Crop.X)
		originalY += float64(m.Crop.Y)
	}
	return originalX, originalY
}
