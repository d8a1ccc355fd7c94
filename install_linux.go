//go:build linux

package vaila

import (
	"os/user"
	"path/filepath"
)

const (
	desktopFileUserDir   = ".local/share/applications"
	desktopFileSystemDir = "/usr/share/applications"
	desktopFilename      = "vaila.desktop"
	launcherFilename     = "vaila"

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

// desktopEntryPath decides where the desktop entry goes: the system-wide
// applications directory when running as root, the per-user one otherwise.
func (i *Installer) desktopEntryPath() (string, error) {
	if i.ApplicationsDir != "" {
		return filepath.Join(i.ApplicationsDir, desktopFilename), nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	if usr.Uid == "0" {
		return filepath.Join(desktopFileSystemDir, desktopFilename), nil
	}
	return filepath.Join(usr.HomeDir, desktopFileUserDir, desktopFilename), nil
}
