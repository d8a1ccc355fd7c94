package files

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"
	"go.trai.ch/zerr"
)

var ErrBackup = zerr.New("backup failed")

// Backup archives every regular file under root into a zstd-compressed
// tarball at outputPath. Entries are ordered by path so the same tree
// always produces the same archive layout.
func Backup(root, outputPath string) error {
	var paths []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return zerr.Wrap(ErrBackup, err.Error())
	}
	sort.Strings(paths)

	out, err := os.Create(outputPath)
	if err != nil {
		return zerr.Wrap(ErrBackup, err.Error())
	}
	defer out.Close()

	compressor, err := zstd.NewWriter(out)
	if err != nil {
		return zerr.Wrap(ErrBackup, err.Error())
	}
	archive := tar.NewWriter(compressor)

	for _, path := range paths {
		if err := addToArchive(archive, root, path); err != nil {
			archive.Close()
			compressor.Close()
			return zerr.Wrap(ErrBackup, err.Error())
		}
	}
	if err := archive.Close(); err != nil {
		compressor.Close()
		return zerr.Wrap(ErrBackup, err.Error())
	}
	if err := compressor.Close(); err != nil {
		return zerr.Wrap(ErrBackup, err.Error())
	}
	return out.Close()
}

func addToArchive(archive *tar.Writer, root, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	relative, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(relative)
	if err := archive.WriteHeader(header); err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(archive, file)
	return err
}

// RestoreBackup unpacks a Backup archive into dest.
func RestoreBackup(archivePath, dest string) error {
	in, err := os.Open(archivePath)
	if err != nil {
		return zerr.Wrap(ErrBackup, err.Error())
	}
	defer in.Close()

	decompressor, err := zstd.NewReader(in)
	if err != nil {
		return zerr.Wrap(ErrBackup, err.Error())
	}
	defer decompressor.Close()

	archive := tar.NewReader(decompressor)
	for {
		header, err := archive.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return zerr.Wrap(ErrBackup, err.Error())
		}
		target := filepath.Join(dest, filepath.FromSlash(header.Name))
		if !filepath.IsLocal(filepath.FromSlash(header.Name)) {
			return zerr.With(ErrBackup, "entry", header.Name)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return zerr.Wrap(ErrBackup, err.Error())
		}
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(header.Mode).Perm())
		if err != nil {
			return zerr.Wrap(ErrBackup, err.Error())
		}
		if _, err := io.Copy(out, archive); err != nil {
			out.Close()
			return zerr.Wrap(ErrBackup, err.Error())
		}
		if err := out.Close(); err != nil {
			return zerr.Wrap(ErrBackup, err.Error())
		}
	}
}
