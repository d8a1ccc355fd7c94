package commands

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaila-multimodaltoolbox/vaila/configs"
	"github.com/vaila-multimodaltoolbox/vaila/pose"
	"github.com/vaila-multimodaltoolbox/vaila/shell"
)

func runCLI(t *testing.T, ctx context.Context, runner shell.Runner, args ...string) (string, error) {
	t.Helper()
	settings := configs.NewAt(filepath.Join(t.TempDir(), "config.json"))
	cli := New(runner, settings)
	var out bytes.Buffer
	cli.SetOutput(&out, &out)
	cli.SetArgs(args)
	err := cli.Execute(ctx)
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, context.Background(), &shell.FakeRunner{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vailá multimodal toolbox 0.6.7")
}

func TestEnvListCommand(t *testing.T) {
	runner := &shell.FakeRunner{Responses: []shell.FakeResponse{
		{
			Prefix: "/usr/bin/conda env list --json",
			Result: shell.Result{Stdout: `{"envs": ["/opt/conda", "/opt/conda/envs/vaila"]}`},
		},
	}}
	out, err := runCLI(t, context.Background(), runner, "env", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "conda\n")
	assert.Contains(t, out, "vaila\n")
}

func TestDoctorReportsFailedChecks(t *testing.T) {
	runner := &shell.FakeRunner{Missing: []string{"conda", "ffmpeg", "nvidia-smi"}}
	out, err := runCLI(t, context.Background(), runner, "doctor", "--target", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required checks failed")
	assert.Contains(t, out, "conda")
}

func TestFilesRenameDryRun(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "trial_old.csv"), []byte("x"), 0644))

	out, err := runCLI(t, context.Background(), &shell.FakeRunner{},
		"files", "rename", root, "--ext", "csv", "--old", "old", "--new", "new", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "1 file(s) would be renamed.")
	assert.FileExists(t, filepath.Join(root, "trial_old.csv"))

	_, err = runCLI(t, context.Background(), &shell.FakeRunner{},
		"files", "rename", root, "--ext", "csv", "--old", "old", "--new", "new")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "trial_new.csv"))
}

func TestFilesFindCommand(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "walk.csv"), []byte("data"), 0644))

	out, err := runCLI(t, context.Background(), &shell.FakeRunner{},
		"files", "find", root, "**/*.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "walk.csv (4B)")
}

func TestFilesTransferCommand(t *testing.T) {
	runner := &shell.FakeRunner{}
	_, err := runCLI(t, context.Background(), runner,
		"files", "transfer", "data/", "host:/backup/")
	require.NoError(t, err)
	require.Len(t, runner.Calls, 1)
	assert.Equal(t, "rsync -avz --progress data/ host:/backup/", runner.CallLines()[0])
}

func TestRec2dCommand(t *testing.T) {
	dir := t.TempDir()
	params := filepath.Join(dir, "dlt.csv")
	require.NoError(t, os.WriteFile(params,
		[]byte("frame,a0,a1,a2,a3,a4,a5,a6,a7\n0,1,0,0,0,1,0,0,0\n"), 0644))
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.Mkdir(dataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "cam1.csv"),
		[]byte("frame,p1_x,p1_y\n0,2,3\n"), 0644))

	out, err := runCLI(t, context.Background(), &shell.FakeRunner{},
		"rec2d", dataDir, "--params", params)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+filepath.Join(dataDir, "Rec2D_"))

	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	var outputDir string
	for _, entry := range entries {
		if entry.IsDir() {
			outputDir = filepath.Join(dataDir, entry.Name())
		}
	}
	require.NotEmpty(t, outputDir)
	outputs, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	content, err := os.ReadFile(filepath.Join(outputDir, outputs[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "0,2.000000,3.000000")
}

func TestRotationCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "markers.csv")
	require.NoError(t, os.WriteFile(input,
		[]byte("frame,p1_x,p1_y,p1_z,p2_x,p2_y,p2_z,p3_x,p3_y,p3_z\n"+
			"0,0,0,0,1,0,0,0,1,0\n"), 0644))

	out, err := runCLI(t, context.Background(), &shell.FakeRunner{},
		"rotation", input, "--config", "C")
	require.NoError(t, err)
	outPath := filepath.Join(dir, "markers_rotation.csv")
	assert.Contains(t, out, "Wrote "+outPath)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "frame,euler_x,euler_y,euler_z,quat_x,quat_y,quat_z,quat_w", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0,"))
}

func TestStabiloCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cop.csv")
	var builder strings.Builder
	builder.WriteString("cop_x,cop_y\n")
	for i := 0; i < 64; i++ {
		builder.WriteString(fmt.Sprintf("%.4f,%.4f\n",
			math.Sin(float64(i)/4), math.Cos(float64(i)/4)))
	}
	require.NoError(t, os.WriteFile(input, []byte(builder.String()), 0644))

	out, err := runCLI(t, context.Background(), &shell.FakeRunner{},
		"stabilo", input, "--fs", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "RMS ML (cm):")
	assert.FileExists(t, filepath.Join(dir, "cop_metrics.csv"))
}

func TestVideoInfoCommand(t *testing.T) {
	runner := &shell.FakeRunner{Responses: []shell.FakeResponse{
		{
			Prefix: "ffprobe",
			Result: shell.Result{Stdout: `{"streams": [{"width": 1920, "height": 1080,
				"r_frame_rate": "30/1", "nb_read_packets": "300"}]}`},
		},
	}}
	out, err := runCLI(t, context.Background(), runner, "video", "info", "walk.mp4")
	require.NoError(t, err)
	assert.Contains(t, out, "walk.mp4: 1920x1080, 30.00 fps, 300 frames")
}

func TestVideoCompressCommand(t *testing.T) {
	runner := &shell.FakeRunner{}
	out, err := runCLI(t, context.Background(), runner,
		"video", "compress", "in.mp4", "out.mp4", "--codec", "h264", "--crf", "28")
	require.NoError(t, err)
	require.Len(t, runner.Calls, 1)
	assert.Equal(t, "ffmpeg -y -i in.mp4 -c:v libx264 -crf 28 -c:a copy out.mp4",
		runner.CallLines()[0])
	assert.Contains(t, out, "Wrote out.mp4 (h264, crf 28)")
}

func TestPoseToPixelCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "trial_mp_norm.csv")
	frame := pose.Frame{Index: 0}
	for range pose.LandmarkNames {
		frame.Landmarks = append(frame.Landmarks, pose.Landmark{X: 0.5, Y: 0.25, Z: -0.25})
	}
	require.NoError(t, pose.WriteNormCSV(input, []pose.Frame{frame}))

	out, err := runCLI(t, context.Background(), &shell.FakeRunner{},
		"pose", "topixel", input, "--width", "640", "--height", "480")
	require.NoError(t, err)
	outPath := filepath.Join(dir, "trial_mp_pixel.csv")
	assert.Contains(t, out, "Wrote "+outPath)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "\n0,320,120,")
}

func TestDocsCommandPrintsURL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	out, err := runCLI(t, ctx, &shell.FakeRunner{}, "docs", "--no-browser")
	require.NoError(t, err)
	assert.Contains(t, out, "Documentation available at http://localhost:")
}

func TestDocsExportWritesPages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "help")
	out, err := runCLI(t, context.Background(), &shell.FakeRunner{},
		"docs", "--export", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported documentation to "+dir)
	assert.FileExists(t, filepath.Join(dir, "en", "index.md"))
	assert.FileExists(t, filepath.Join(dir, "pt_br", "index.md"))
}

func TestInstallDryRun(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := runCLI(t, context.Background(), &shell.FakeRunner{},
		"install", "--dry-run", "--target", filepath.Join(t.TempDir(), "vaila"))
	require.NoError(t, err)
}

func TestUnknownCommandFails(t *testing.T) {
	_, err := runCLI(t, context.Background(), &shell.FakeRunner{}, "frobnicate")
	require.Error(t, err)
}
