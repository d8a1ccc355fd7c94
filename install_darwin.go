//go:build darwin

package vaila

import (
	"os/user"
	"path/filepath"
)

const (
	desktopFilename  = "vaila.desktop"
	launcherFilename = "vaila"

	// There is no freedesktop menu on macOS; the entry is still rendered
	// so Verify and uninstall have one format to deal with.
	desktopFileTemplate = `[Desktop Entry]
Name={{.product}}
Version={{.version}}
Type=Application
Icon={{.installDir}}/vaila/images/vaila_ico.png
Exec={{.launcher}}
Comment={{.tagline}}
Categories=Science;Education;
Terminal=true
`

	launcherTemplate = `#!/bin/bash
source "$({{.conda}} info --base)/etc/profile.d/conda.sh"
conda activate {{.environment}}
cd "{{.installDir}}"
python3 "{{.installDir}}/vaila.py"
`
)

func (i *Installer) desktopEntryPath() (string, error) {
	if i.ApplicationsDir != "" {
		return filepath.Join(i.ApplicationsDir, desktopFilename), nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(usr.HomeDir, "Applications", desktopFilename), nil
}
