// Package fsutil holds the filesystem primitives shared by export, import,
// backup and the skills ledger. Everything goes through an afero.Fs so tests
// can run against a memory filesystem where symlinks are not involved.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// osArtifacts are files the OS drops into directories; they are never synced.
var osArtifacts = map[string]bool{
	".DS_Store": true,
	"Thumbs.db": true,
}

// IsOSArtifact reports whether name is an OS metadata file.
func IsOSArtifact(name string) bool {
	return osArtifacts[name]
}

// Lstat stats path without following a final symlink when fs supports it.
func Lstat(fs afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fs.Stat(path)
}

// Exists reports whether path exists; a dangling symlink counts as existing.
func Exists(fs afero.Fs, path string) bool {
	_, err := Lstat(fs, path)
	return err == nil
}

// IsDir reports whether path resolves to a directory.
func IsDir(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.IsDir()
}

// IsSymlink reports whether path itself is a symbolic link.
func IsSymlink(fs afero.Fs, path string) bool {
	info, err := Lstat(fs, path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// CopyFile copies src to dst, creating parent directories and overwriting dst.
func CopyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	if err := fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	if IsSymlink(fs, dst) {
		if err := fs.Remove(dst); err != nil {
			return fmt.Errorf("failed to replace symlink %s: %w", dst, err)
		}
	}

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}

// CopyDir merges the tree at src into dst. Files present in both are
// overwritten; files only in dst are left alone. Symlinks inside the tree are
// recreated as symlinks when fs supports it, otherwise skipped.
func CopyDir(fs afero.Fs, src, dst string) error {
	info, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	if err := fs.MkdirAll(dst, info.Mode().Perm()|0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	entries, err := afero.ReadDir(fs, src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if IsSymlink(fs, srcPath) {
			if err := copySymlink(fs, srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		if entry.IsDir() {
			if err := CopyDir(fs, srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		if err := CopyFile(fs, srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copySymlink(fs afero.Fs, src, dst string) error {
	reader, okRead := fs.(afero.LinkReader)
	linker, okLink := fs.(afero.Linker)
	if !okRead || !okLink {
		return nil
	}

	target, err := reader.ReadlinkIfPossible(src)
	if err != nil {
		return fmt.Errorf("failed to read symlink %s: %w", src, err)
	}

	if Exists(fs, dst) {
		if err := fs.RemoveAll(dst); err != nil {
			return fmt.Errorf("failed to replace %s: %w", dst, err)
		}
	}

	if err := linker.SymlinkIfPossible(target, dst); err != nil {
		return fmt.Errorf("failed to create symlink %s: %w", dst, err)
	}
	return nil
}

// CopyDirClean copies src into dst and then strips OS artifacts from dst.
func CopyDirClean(fs afero.Fs, src, dst string) error {
	if err := CopyDir(fs, src, dst); err != nil {
		return err
	}
	return RemoveOSArtifacts(fs, dst)
}

// RemoveOSArtifacts deletes OS metadata files anywhere under dir. A missing
// dir is not an error.
func RemoveOSArtifacts(fs afero.Fs, dir string) error {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())
		if IsOSArtifact(entry.Name()) {
			if err := fs.Remove(fullPath); err != nil {
				return fmt.Errorf("failed to remove %s: %w", fullPath, err)
			}
			continue
		}
		if entry.IsDir() && !IsSymlink(fs, fullPath) {
			if err := RemoveOSArtifacts(fs, fullPath); err != nil {
				return err
			}
		}
	}
	return nil
}
