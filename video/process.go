package video

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/zerr"

	"github.com/vaila-multimodaltoolbox/vaila/shell"
)

// Info holds the probed stream properties of a video file.
type Info struct {
	Width  int
	Height int
	FPS    float64
	Frames int
}

// Probe reads width, height, frame rate and frame count with ffprobe.
func Probe(ctx context.Context, runner shell.Runner, path string) (*Info, error) {
	result, err := runner.Run(ctx, shell.Command{
		Name: "ffprobe",
		Args: []string{
			"-v", "error",
			"-select_streams", "v:0",
			"-count_packets",
			"-show_entries", "stream=width,height,r_frame_rate,nb_read_packets",
			"-of", "json",
			path,
		},
	})
	if err != nil {
		return nil, zerr.Wrap(ErrFfprobe, err.Error())
	}
	if result.ExitCode != 0 {
		return nil, zerr.With(ErrFfprobe, "stderr", strings.TrimSpace(result.Stderr))
	}

	var payload struct {
		Streams []struct {
			Width         int    `json:"width"`
			Height        int    `json:"height"`
			RFrameRate    string `json:"r_frame_rate"`
			NbReadPackets string `json:"nb_read_packets"`
		} `json:"streams"`
	}
	if err := json.Unmarshal([]byte(result.Stdout), &payload); err != nil {
		return nil, zerr.Wrap(ErrFfprobe, err.Error())
	}
	if len(payload.Streams) == 0 {
		return nil, zerr.With(ErrFfprobe, "reason", "no video stream")
	}
	stream := payload.Streams[0]
	frames, _ := strconv.Atoi(stream.NbReadPackets)
	return &Info{
		Width:  stream.Width,
		Height: stream.Height,
		FPS:    parseFrameRate(stream.RFrameRate),
		Frames: frames,
	}, nil
}

// parseFrameRate parses ffprobe's rational frame rate ("30000/1001").
func parseFrameRate(rate string) float64 {
	parts := strings.SplitN(rate, "/", 2)
	numerator, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return numerator
	}
	denominator, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// ResizeOptions describes one resize/crop run.
type ResizeOptions struct {
	Input  string
	Output string
	// Scale is the integer upscale factor, at least 1.
	Scale int
	// Crop, when set, is applied before scaling and clamped to the
	// frame bounds.
	Crop *Crop
}

// Resize crops and scales a video with ffmpeg and writes the metadata
// sidecar next to the output.
func Resize(ctx context.Context, runner shell.Runner, opts ResizeOptions) (*Metadata, error) {
	if opts.Scale < 1 {
		return nil, zerr.With(ErrBadScale, "scale", strconv.Itoa(opts.Scale))
	}
	info, err := Probe(ctx, runner, opts.Input)
	if err != nil {
		return nil, err
	}

	metadata := &Metadata{
		OriginalVideo:  filepath.Base(opts.Input),
		OriginalWidth:  info.Width,
		OriginalHeight: info.Height,
		OriginalFPS:    info.FPS,
		OriginalFrames: info.Frames,
		ScaleFactor:    opts.Scale,
		OutputVideo:    filepath.Base(opts.Output),
	}

	var filters []string
	width, height := info.Width, info.Height
	if opts.Crop != nil {
		crop := clampCrop(*opts.Crop, info.Width, info.Height)
		metadata.Crop = &crop
		metadata.CropApplied = true
		width, height = crop.Width, crop.Height
		filters = append(filters, fmt.Sprintf("crop=%d:%d:%d:%d", crop.Width, crop.Height, crop.X, crop.Y))
	}
	metadata.OutputWidth = width * opts.Scale
	metadata.OutputHeight = height * opts.Scale
	filters = append(filters, fmt.Sprintf("scale=%d:%d", metadata.OutputWidth, metadata.OutputHeight))

	result, err := runner.Run(ctx, shell.Command{
		Name: "ffmpeg",
		Args: []string{
			"-y", "-i", opts.Input,
			"-vf", strings.Join(filters, ","),
			opts.Output,
		},
	})
	if err != nil {
		return nil, zerr.Wrap(ErrFfmpeg, err.Error())
	}
	if result.ExitCode != 0 {
		return nil, zerr.With(ErrFfmpeg, "stderr", strings.TrimSpace(result.Stderr))
	}

	if err := metadata.Write(MetadataPath(opts.Output)); err != nil {
		return nil, err
	}
	return metadata, nil
}

func clampCrop(crop Crop, width, height int) Crop {
	if crop.X < 0 {
		crop.X = 0
	}
	if crop.Y < 0 {
		crop.Y = 0
	}
	if crop.X > width {
		crop.X = width
	}
	if crop.Y > height {
		crop.Y = height
	}
	if crop.X+crop.Width > width {
		crop.Width = width - crop.X
	}
	if crop.Y+crop.Height > height {
		crop.Height = height - crop.Y
	}
	return crop
}

// Compress re-encodes a video with libx264 ("h264") or libx265 ("h265")
// at the given CRF, copying the audio stream.
func Compress(ctx context.Context, runner shell.Runner, input, output, codec string, crf int) error {
	var encoder string
	switch codec {
	case "h264":
		encoder = "libx264"
	case "h265":
		encoder = "libx265"
	default:
		return zerr.With(ErrFfmpeg, "reason", "unknown codec "+codec)
	}
	result, err := runner.Run(ctx, shell.Command{
		Name: "ffmpeg",
		Args: []string{
			"-y", "-i", input,
			"-c:v", encoder,
			"-crf", strconv.Itoa(crf),
			"-c:a", "copy",
			output,
		},
	})
	if err != nil {
		return zerr.Wrap(ErrFfmpeg, err.Error())
	}
	if result.ExitCode != 0 {
		return zerr.With(ErrFfmpeg, "stderr", strings.TrimSpace(result.Stderr))
	}
	return nil
}
