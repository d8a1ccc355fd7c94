package conda

import "go.trai.ch/zerr"

var (
	// ErrCondaNotFound means no conda executable could be located on PATH
	// or in any of the well-known install prefixes.
	ErrCondaNotFound = zerr.New("conda executable not found")

	// ErrEnvList means `conda env list --json` failed or returned garbage.
	ErrEnvList = zerr.New("failed to list conda environments")

	// ErrEnvCreate means environment creation from the manifest failed.
	ErrEnvCreate = zerr.New("failed to create conda environment")

	// ErrEnvUpdate means updating an existing environment failed.
	ErrEnvUpdate = zerr.New("failed to update conda environment")

	// ErrEnvRemove means removing an environment failed.
	ErrEnvRemove = zerr.New("failed to remove conda environment")

	// ErrPipInstall means a pip install inside an environment failed.
	ErrPipInstall = zerr.New("pip install failed")

	// ErrPackageRemove means a conda package removal failed.
	ErrPackageRemove = zerr.New("conda package removal failed")

	// ErrManifestInvalid means the environment manifest failed validation.
	ErrManifestInvalid = zerr.New("invalid environment manifest")
)
