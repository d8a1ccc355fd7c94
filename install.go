package vaila

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vaila-multimodaltoolbox/vaila/conda"
	"github.com/vaila-multimodaltoolbox/vaila/gpu"
	"github.com/vaila-multimodaltoolbox/vaila/receipt"
	"github.com/vaila-multimodaltoolbox/vaila/shell"
)

const (
	KB int64 = 1 << 10
	MB int64 = 1 << 20
	GB int64 = 1 << 30
	TB int64 = 1 << 40
)

// Stage identifies one step of the installation sequence.
type Stage string

const (
	StagePrerequisites Stage = "prerequisites"
	StageEnvironment   Stage = "environment"
	StagePackageSwap   Stage = "package-swap"
	StageGpuExtras     Stage = "gpu-extras"
	StageCopy          Stage = "copy"
	StageLauncher      Stage = "launcher"
	StageDesktopEntry  Stage = "desktop-entry"
	StagePermissions   Stage = "permissions"
	StageReceipt       Stage = "receipt"
)

// stageSequence is the full installation in execution order.
var stageSequence = []Stage{
	StagePrerequisites,
	StageEnvironment,
	StagePackageSwap,
	StageGpuExtras,
	StageCopy,
	StageLauncher,
	StageDesktopEntry,
	StagePermissions,
	StageReceipt,
}

type (
	// InstallFile is an augmented os.FileInfo struct with both source and
	// target path as well as a flag indicating whether the file has been
	// copied to the target or not.
	InstallFile struct {
		os.FileInfo
		Path      string
		Target    string
		installed bool
	}
	// InstallStatus is a message struct that gets passed around at various
	// times in the installation process. All fields are optional and
	// contain the running stage, the current file, whether the installer
	// as a whole is finished, or whether it's been aborted and rolled back.
	InstallStatus struct {
		Stage   Stage
		File    *InstallFile
		Done    bool
		Aborted bool
	}
	// Installer provisions the toolbox: conda environment, GPU extras,
	// application tree, launcher and desktop entry. It runs its stages in
	// a goroutine and reports over a status channel; an aborted or failed
	// run can be rolled back, removing exactly the paths it created, in
	// reverse order.
	Installer struct {
		Target string
		Source string
		// ManifestPath is the environment manifest file handed to conda.
		// When empty, ManifestContent is materialized to a temporary file
		// instead (and removed when the run finishes).
		ManifestPath    string
		ManifestContent []byte
		// ApplicationsDir overrides the desktop-entry directory. Empty
		// means the OS default for the current user.
		ApplicationsDir    string
		CreateLauncher     bool
		CreateDesktopEntry bool
		Done               bool

		config  *Config
		runner  shell.Runner
		manager *conda.Manager
		devices []gpu.Device

		totalSize     int64
		installedSize int64
		files         []*InstallFile
		// created tracks the paths written after the tree copy (launcher,
		// desktop entry, receipt), in creation order.
		created      []string
		manifestTemp string
		err          error

		statusChannel       chan InstallStatus
		abortChannel        chan bool
		abortConfirmChannel chan bool
		actionLock          sync.Mutex
		progressFunction    func(InstallStatus)
	}
)

// ErrAborted is reported when the run was stopped through Abort or Rollback.
var ErrAborted = errors.New("installation aborted")

// NewInstaller creates a new Installer copying from the given source tree.
// You will still need to set the target path before starting:
//
//	installer := NewInstaller(".", config, runner)
//	installer.Target = "/some/output/path"
//	installer.StartInstall(ctx)
func NewInstaller(source string, config *Config, runner shell.Runner) *Installer {
	return NewInstallerTo("", source, config, runner)
}

// NewInstallerTo creates a new installer with a target path.
func NewInstallerTo(target, source string, config *Config, runner shell.Runner) *Installer {
	return &Installer{
		Target:              target,
		Source:              source,
		CreateLauncher:      !config.NoLauncher,
		CreateDesktopEntry:  true,
		config:              config,
		runner:              runner,
		statusChannel:       make(chan InstallStatus, 1),
		abortChannel:        make(chan bool, 1),
		abortConfirmChannel: make(chan bool, 1),
		progressFunction:    func(status InstallStatus) {},
	}
}

// StartInstall runs the installer in a separate goroutine and returns
// immediately. Use Status() to get updates about the progress.
func (i *Installer) StartInstall(ctx context.Context) { go i.install(ctx) }

// install runs the stages in order. The first fatal stage error stops the
// run; non-fatal stages (package swap, GPU extras) only log.
func (i *Installer) install(ctx context.Context) {
	i.Done = false
	i.err = nil
	defer i.cleanupManifest()
	for _, stage := range stageSequence {
		select {
		case <-i.abortChannel:
			i.err = ErrAborted
			i.Done = false
			i.abortConfirmChannel <- true
			return
		default:
		}
		status := InstallStatus{Stage: stage}
		i.setStatus(status)
		i.progressFunction(status)
		if err := i.runStage(ctx, stage); err != nil {
			if stageIsFatal(stage) {
				i.fail(stage, err)
				return
			}
			log.Printf("Stage %s failed (continuing): %v", stage, err)
		}
		if errors.Is(i.err, ErrAborted) {
			// the copy loop consumed the abort signal itself
			return
		}
	}
	i.Done = true
	i.setStatus(InstallStatus{Done: true})
}

func (i *Installer) runStage(ctx context.Context, stage Stage) error {
	switch stage {
	case StagePrerequisites:
		return i.checkPrerequisites()
	case StageEnvironment:
		return i.provisionEnvironment(ctx)
	case StagePackageSwap:
		return i.swapPackages(ctx)
	case StageGpuExtras:
		return i.installGpuExtras(ctx)
	case StageCopy:
		return i.copyTree()
	case StageLauncher:
		return i.writeLauncher()
	case StageDesktopEntry:
		return i.writeDesktopEntry()
	case StagePermissions:
		return i.applyPermissions()
	case StageReceipt:
		return i.writeReceipt()
	}
	return nil
}

// stageIsFatal reports whether a stage failure stops the whole run. The
// package swap and GPU extras are best-effort.
func stageIsFatal(stage Stage) bool {
	return stage != StagePackageSwap && stage != StageGpuExtras
}

func (i *Installer) fail(stage Stage, err error) {
	i.err = fmt.Errorf("stage %s: %w", stage, err)
	log.Printf("Installation failed: %v", i.err)
	i.Done = true
	i.setStatus(InstallStatus{Stage: stage, Done: true})
}

// checkPrerequisites locates the conda executable. This is the only stage
// allowed to run before any filesystem side effect: a missing dependency
// manager must leave the machine untouched.
func (i *Installer) checkPrerequisites() error {
	manager, err := conda.Find(i.runner)
	if err != nil {
		return err
	}
	i.manager = manager
	return nil
}

// provisionEnvironment creates the conda environment from the manifest, or
// updates it with pruning when an environment of that name already exists.
func (i *Installer) provisionEnvironment(ctx context.Context) error {
	if i.ManifestPath == "" {
		manifestPath, _, err := MaterializeManifest(i.ManifestContent)
		if err != nil {
			return err
		}
		i.ManifestPath = manifestPath
		i.manifestTemp = manifestPath
	}
	exists, err := i.manager.EnvExists(ctx, i.config.EnvName)
	if err != nil {
		return err
	}
	if exists {
		log.Printf("Environment %s exists, updating", i.config.EnvName)
		return i.manager.UpdateEnv(ctx, i.config.EnvName, i.ManifestPath)
	}
	log.Printf("Creating environment %s", i.config.EnvName)
	return i.manager.CreateEnv(ctx, i.ManifestPath)
}

// swapPackages replaces conda-resolved packages with their pip substitutes
// (opencv -> opencv-contrib-python by default).
func (i *Installer) swapPackages(ctx context.Context) error {
	for _, swap := range i.config.PackageSwaps {
		if err := i.manager.RemovePackage(ctx, i.config.EnvName, swap.Remove); err != nil {
			return err
		}
		if err := i.manager.PipInstall(ctx, i.config.EnvName, []string{swap.Install}, ""); err != nil {
			return err
		}
	}
	return nil
}

// installGpuExtras pip-installs the CUDA wheel set when an NVIDIA GPU is
// present. No GPU means nothing to do.
func (i *Installer) installGpuExtras(ctx context.Context) error {
	devices, err := gpu.Detect(ctx, i.runner)
	if err != nil {
		return err
	}
	i.devices = devices
	if len(devices) == 0 || len(i.config.GpuPackages) == 0 {
		return nil
	}
	log.Printf("NVIDIA GPU detected (%s), installing GPU packages", devices[0].Name)
	return i.manager.PipInstall(ctx, i.config.EnvName, i.config.GpuPackages, i.config.GpuIndexURL)
}

// copyTree copies the source tree file-by-file into the target, honoring
// the abort channel between files.
func (i *Installer) copyTree() error {
	if err := i.listSourceFiles(); err != nil {
		return err
	}
	if space := osDiskSpace(path.Dir(i.Target)); space >= 0 && space < i.totalSize {
		return fmt.Errorf("not enough disk space: %d bytes needed, %d available", i.totalSize, space)
	}
	i.actionLock.Lock()
	defer i.actionLock.Unlock()
	if err := os.MkdirAll(i.Target, 0755); err != nil {
		return err
	}
	for _, file := range i.files {
		select {
		case <-i.abortChannel:
			i.err = ErrAborted
			i.Done = false
			i.abortConfirmChannel <- true
			return nil
		default:
			status := InstallStatus{Stage: StageCopy, File: file}
			i.setStatus(status)
			i.progressFunction(status)
			if file.IsDir() {
				if err := os.MkdirAll(file.Target, 0755); err != nil {
					return err
				}
			} else {
				if err := copyFile(file.Path, file.Target, file.Mode()); err != nil {
					return err
				}
				i.installedSize += file.Size()
			}
			file.installed = true
			i.setStatus(InstallStatus{Stage: StageCopy, File: file})
		}
	}
	return nil
}

// listSourceFiles walks the source tree, skipping excluded paths, and
// prepares the copy list.
func (i *Installer) listSourceFiles() error {
	i.files = i.files[:0]
	i.totalSize = 0
	err := filepath.Walk(i.Source, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(i.Source, filePath)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		if i.excluded(relPath) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		i.files = append(i.files, &InstallFile{
			FileInfo: info,
			Path:     filePath,
			Target:   filepath.Join(i.Target, relPath),
		})
		if !info.IsDir() {
			i.totalSize += info.Size()
		}
		return nil
	})
	return err
}

func (i *Installer) excluded(relPath string) bool {
	for _, pattern := range i.config.CopyExcludes {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(relPath)); ok {
			return true
		}
	}
	return false
}

// writeLauncher renders the launcher script into the target directory with
// execute permission.
func (i *Installer) writeLauncher() error {
	if !i.CreateLauncher {
		return nil
	}
	launcherPath := i.LauncherPath()
	content := ExpandVariables(launcherTemplate, i.templateVariables())
	if err := os.WriteFile(launcherPath, []byte(content), 0755); err != nil {
		return err
	}
	i.created = append(i.created, launcherPath)
	return nil
}

// writeDesktopEntry registers the application in the graphical shell's
// menu. The Exec line points at the launcher.
func (i *Installer) writeDesktopEntry() error {
	if !i.CreateDesktopEntry || !i.CreateLauncher {
		return nil
	}
	entryPath, err := i.desktopEntryPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(path.Dir(entryPath), 0755); err != nil {
		return err
	}
	content := ExpandVariables(desktopFileTemplate, i.templateVariables())
	if err := os.WriteFile(entryPath, []byte(content), 0755); err != nil {
		return err
	}
	i.created = append(i.created, entryPath)
	return nil
}

// applyPermissions normalizes modes on the copied tree: directories 0755,
// files 0644, source-executable files 0755.
func (i *Installer) applyPermissions() error {
	for _, file := range i.files {
		if !file.installed {
			continue
		}
		mode := os.FileMode(0644)
		if file.IsDir() || file.Mode().Perm()&0100 != 0 {
			mode = 0755
		}
		if err := os.Chmod(file.Target, mode); err != nil {
			return err
		}
	}
	return nil
}

// writeReceipt records everything the run created, with content digests.
func (i *Installer) writeReceipt() error {
	r := &receipt.Receipt{
		Product:     i.config.Product,
		Version:     i.config.Version,
		InstalledAt: time.Now(),
		Environment: i.config.EnvName,
	}
	for _, file := range i.files {
		if file.IsDir() || !file.installed {
			continue
		}
		digest, err := receipt.HashFile(file.Target)
		if err != nil {
			return err
		}
		r.Files = append(r.Files, receipt.File{Path: file.Target, Size: file.Size(), Digest: digest})
	}
	for _, created := range i.created {
		if created == i.LauncherPath() {
			r.Launcher = created
		} else {
			r.DesktopEntry = created
		}
	}
	receiptPath := filepath.Join(i.Target, receipt.Filename)
	if err := receipt.Write(receiptPath, r); err != nil {
		return err
	}
	i.created = append(i.created, receiptPath)
	return nil
}

// MaterializeManifest writes manifest content to a temporary file and
// returns its path together with a cleanup function that removes it.
func MaterializeManifest(content []byte) (string, func(), error) {
	manifestFile, err := os.CreateTemp("", "vaila_env_*.yaml")
	if err != nil {
		return "", nil, err
	}
	if _, err := manifestFile.Write(content); err != nil {
		manifestFile.Close()
		os.Remove(manifestFile.Name())
		return "", nil, err
	}
	manifestFile.Close()
	name := manifestFile.Name()
	return name, func() { os.Remove(name) }, nil
}

// cleanupManifest removes the temporary manifest file, if one was written.
func (i *Installer) cleanupManifest() {
	if i.manifestTemp != "" {
		os.Remove(i.manifestTemp)
		i.manifestTemp = ""
		i.ManifestPath = ""
	}
}

// LauncherPath is where the launcher script is written.
func (i *Installer) LauncherPath() string {
	return filepath.Join(i.Target, launcherFilename)
}

func (i *Installer) templateVariables() StringMap {
	condaPath := "conda"
	if i.manager != nil {
		condaPath = i.manager.Path
	}
	return MergeVariables(i.config.Variables, StringMap{
		"product":     i.config.Product,
		"version":     i.config.Version,
		"tagline":     i.config.Tagline,
		"installDir":  i.Target,
		"launcher":    i.LauncherPath(),
		"environment": i.config.EnvName,
		"conda":       condaPath,
	})
}

// Abort can be called to stop the installer. The installer will usually
// not stop immediately, but finish copying the current file. Aborting a
// run that has already finished is a no-op and returns right away.
//
// Use Rollback() instead of Abort() if you want all files and directories
// rolled back and deleted as well.
func (i *Installer) Abort() {
	if i.Done {
		return
	}
	select {
	case i.abortChannel <- true:
	default:
	}
	for {
		select {
		case <-i.abortConfirmChannel:
			return
		case <-time.After(100 * time.Millisecond):
			// the run can finish between the Done check and the send;
			// without this the caller would wait on a confirmation that
			// never comes
			if i.Done {
				return
			}
		}
	}
}

// Rollback aborts and rolls back (i.e. deletes) the files and directories
// that have been installed so far, in reverse creation order. It will not
// delete files that weren't written by the installer.
func (i *Installer) Rollback() {
	i.Abort()
	i.actionLock.Lock()
	defer i.actionLock.Unlock()
	i.removeCreated()
	i.Done = true
	i.setStatus(InstallStatus{Aborted: true})
}

// removeCreated deletes everything the run wrote, newest first. It will
// not delete files that weren't written by the installer.
func (i *Installer) removeCreated() {
	// Do not os.RemoveAll(i.Target)! That could easily delete files and
	// folders not created by the installer.
	for p := len(i.created) - 1; p >= 0; p-- {
		if err := os.Remove(i.created[p]); err != nil {
			log.Printf("Error deleting %s", i.created[p])
		}
	}
	i.created = i.created[:0]
	for p := len(i.files) - 1; p >= 0; p-- {
		if i.files[p].installed {
			err := os.Remove(i.files[p].Target)
			if err != nil {
				log.Printf("Error deleting %s", i.files[p].Target)
			}
			i.files[p].installed = false
			if !i.files[p].IsDir() {
				i.installedSize -= i.files[p].Size()
			}
			i.setStatus(InstallStatus{File: i.files[p]})
		}
	}
	os.Remove(i.Target)
}

// setStatus is a non-blocking write to the status channel. If no-one is
// listening through Status() then it will simply do nothing and return.
func (i *Installer) setStatus(status InstallStatus) {
	select {
	case i.statusChannel <- status:
	case <-time.After(1 * time.Second):
	}
}

// Status returns the current installer status as an InstallStatus object.
func (i *Installer) Status() InstallStatus {
	select {
	case status := <-i.statusChannel:
		return status
	case <-time.After(1 * time.Second):
		return InstallStatus{}
	}
}

// Err returns the error that stopped the run, if any.
func (i *Installer) Err() error { return i.err }

// GpuDevices returns the GPUs found during the run.
func (i *Installer) GpuDevices() []gpu.Device { return i.devices }

// CheckInstallDir checks if the given directory is a valid install
// location: the parent must exist and be writable.
func (i *Installer) CheckInstallDir(dirName string) error {
	parent := path.Dir(dirName)
	parentInfo, err := os.Stat(parent)
	if err != nil || !parentInfo.IsDir() {
		return fmt.Errorf("install parent is not a directory: '%s'", parent)
	} else if !osFileWriteAccess(parent) {
		return fmt.Errorf("install location is not writeable: '%s' -> '%s'", parent, parentInfo.Mode().Perm())
	}
	i.Target = dirName
	return nil
}

// NextFile returns the file that the installer will install next, or the
// one that is currently being installed.
func (i *Installer) NextFile() *InstallFile {
	for _, file := range i.files {
		if !file.installed {
			return file
		}
	}
	return nil
}

func (i *Installer) SetProgressFunction(function func(InstallStatus)) {
	i.progressFunction = function
}

// Progress returns the size ratio between already installed files and all
// files. The result is a float between 0.0 and 1.0, inclusive.
func (i *Installer) Progress() float64 {
	if i.totalSize == 0 {
		return 0
	}
	return float64(i.installedSize) / float64(i.totalSize)
}

// Size returns the bytes that have been copied so far or should be copied
// in total.
func (i *Installer) Size() int64 {
	if i.Done {
		return i.totalSize
	}
	return i.installedSize
}

// SizeString returns a human-readable version of Size(), appending a size
// suffix, as needed.
func (i *Installer) SizeString() string {
	size := i.Size()
	switch {
	case size < KB:
		return fmt.Sprintf("%dB", size)
	case size < MB:
		return fmt.Sprintf("%.2fKB", float64(size)/float64(KB))
	case size < GB:
		return fmt.Sprintf("%.2fMB", float64(size)/float64(MB))
	case size < TB:
		return fmt.Sprintf("%.2fGB", float64(size)/float64(GB))
	default:
		return fmt.Sprintf("%.2fTB", float64(size)/float64(TB))
	}
}

// WaitForDone returns only after the installer has finished installing (or
// rolling back).
func (i *Installer) WaitForDone() {
	for {
		if status := <-i.statusChannel; status.Done || status.Aborted {
			return
		}
	}
}

func copyFile(source, target string, mode os.FileMode) error {
	content, err := os.ReadFile(source)
	if err != nil {
		return err
	}
	return os.WriteFile(target, content, mode.Perm())
}
