package vaila

import (
	"context"
	"fmt"
	"path"

	"github.com/vaila-multimodaltoolbox/vaila/conda"
	"github.com/vaila-multimodaltoolbox/vaila/gpu"
	"github.com/vaila-multimodaltoolbox/vaila/receipt"
	"github.com/vaila-multimodaltoolbox/vaila/shell"
)

// Check is one doctor finding.
type Check struct {
	Name     string
	OK       bool
	Required bool
	Detail   string
	Hint     string
}

// Doctor inspects the machine and an existing installation: conda, the
// environment, ffmpeg, GPU, disk space and receipt integrity.
func Doctor(ctx context.Context, config *Config, target string, runner shell.Runner) []Check {
	var checks []Check

	manager, err := conda.Find(runner)
	if err != nil {
		checks = append(checks, Check{
			Name:     "conda",
			Required: true,
			Hint:     "install Anaconda or Miniconda and re-run",
		})
	} else {
		version, verr := manager.Version(ctx)
		checks = append(checks, Check{Name: "conda", OK: verr == nil, Required: true, Detail: version})

		exists, eerr := manager.EnvExists(ctx, config.EnvName)
		envCheck := Check{Name: "environment " + config.EnvName, OK: eerr == nil && exists, Required: true}
		if !envCheck.OK {
			envCheck.Hint = "run `vaila install` to provision the environment"
		}
		checks = append(checks, envCheck)
	}

	ffmpegCheck := Check{Name: "ffmpeg"}
	if lp, ok := runner.(shell.LookPather); ok {
		ffmpegPath, ferr := lp.LookPath("ffmpeg")
		ffmpegCheck.OK = ferr == nil
		ffmpegCheck.Detail = ffmpegPath
	}
	if !ffmpegCheck.OK {
		ffmpegCheck.Hint = "install ffmpeg with the system package manager"
	}
	checks = append(checks, ffmpegCheck)

	devices, _ := gpu.Detect(ctx, runner)
	gpuCheck := Check{Name: "nvidia gpu", OK: len(devices) > 0}
	if len(devices) > 0 {
		gpuCheck.Detail = fmt.Sprintf("%s (driver %s)", devices[0].Name, devices[0].Driver)
	} else {
		gpuCheck.Detail = "none detected, CPU processing only"
	}
	checks = append(checks, gpuCheck)

	if space := osDiskSpace(path.Dir(target)); space >= 0 {
		// the provisioned environment alone runs to several GB
		spaceCheck := Check{
			Name:     "disk space",
			OK:       space > 5*GB,
			Required: true,
			Detail:   fmt.Sprintf("%.2fGB free", float64(space)/float64(GB)),
		}
		if !spaceCheck.OK {
			spaceCheck.Hint = "free at least 5GB at the install location"
		}
		checks = append(checks, spaceCheck)
	}

	r, err := receipt.LoadFromDir(target)
	if err != nil {
		checks = append(checks, Check{
			Name:   "installation",
			Detail: "no install receipt at " + target,
			Hint:   "run `vaila install`",
		})
		return checks
	}
	problems := r.Verify()
	verifyCheck := Check{
		Name:   "installation",
		OK:     len(problems) == 0,
		Detail: fmt.Sprintf("%s %s, %d files", r.Product, r.Version, len(r.Files)),
	}
	if len(problems) > 0 {
		verifyCheck.Detail = fmt.Sprintf("%d of %d files missing or modified", len(problems), len(r.Files))
		verifyCheck.Hint = "re-run `vaila install` to repair"
	}
	checks = append(checks, verifyCheck)
	return checks
}

// Failed reports whether any required check failed.
func Failed(checks []Check) bool {
	for _, check := range checks {
		if check.Required && !check.OK {
			return true
		}
	}
	return false
}
