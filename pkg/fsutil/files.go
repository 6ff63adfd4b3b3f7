package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	pkgerrors "github.com/glorpus-work/gnssget/pkg/errors"
)

// tempPattern marks in-flight writes; such files never carry a product name.
const tempPattern = ".gnssget-*.tmp"

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// WriteFileAtomic writes data to path so that readers either see the previous state
// (usually: no file) or the complete new content, never a partial file.
// The content goes to a temporary file in the destination directory which is synced
// and then renamed over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return fmt.Errorf("empty destination: %w", pkgerrors.ErrInvalidPath)
	}
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return pkgerrors.Wrapf(err, "could not create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return pkgerrors.Wrap(err, "could not create temp file")
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return pkgerrors.Wrap(err, "could not write file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return pkgerrors.Wrap(err, "could not sync file")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return pkgerrors.Wrap(err, "could not close file")
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return pkgerrors.Wrap(err, "could not set permissions")
	}
	if err := Move(tmpPath, path); err != nil {
		cleanup()
		return pkgerrors.Wrap(err, "could not finalize file")
	}
	return nil
}

// Move moves a file from src to dst.
// It first attempts os.Rename; if that fails because src and dst live on
// different filesystems it falls back to copy + delete.
func Move(src, dst string) error {
	if src == "" || dst == "" {
		return pkgerrors.ErrEmptyPaths
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source %s: %w", src, err)
	}
	if srcInfo.IsDir() {
		return fmt.Errorf("%s is a directory: %w", src, pkgerrors.ErrInvalidPath)
	}

	if err := EnsureFileDir(dst); err != nil {
		return fmt.Errorf("failed to create destination directory for %s: %w", dst, err)
	}

	err = os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossFilesystemError(err) {
		return fmt.Errorf("failed to rename %s to %s: %w", src, dst, err)
	}
	return moveFile(src, dst, srcInfo.Mode())
}

// isCrossFilesystemError determines if an error from os.Rename indicates
// a cross-filesystem boundary issue that requires fallback to copy+delete.
func isCrossFilesystemError(err error) bool {
	if err == nil {
		return false
	}

	var linkError *os.LinkError
	if errors.As(err, &linkError) {
		if errno, ok := linkError.Err.(syscall.Errno); ok {
			return errno == syscall.EXDEV
		}
	}

	// Windows and some network filesystems do not surface EXDEV.
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "cross-device") || strings.Contains(errMsg, "cross device")
}

// moveFile copies src next to dst under a temporary name, renames it into
// place and removes src, so dst is never observed half-written.
func moveFile(src, dst string, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file next to %s: %w", dst, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := Copy(src, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to copy file %s to %s: %w", src, dst, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions on %s: %w", dst, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s to %s: %w", tmpPath, dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove source file %s after copy: %w", src, err)
	}
	return nil
}

// Copy copies the contents of srcFile to dstFile and syncs the destination.
func Copy(srcFile, dstFile string) error {
	src, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(dstFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to copy from %s to %s: %w", srcFile, dstFile, err)
	}
	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to sync %s: %w", dstFile, err)
	}
	return dst.Close()
}

// AppendLines appends lines to the file at path, creating it (and its parent
// directory) if needed. Each line is written with a trailing newline.
func AppendLines(path string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if err := EnsureFileDir(path); err != nil {
		return pkgerrors.Wrapf(err, "could not create directory for %s", path)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, FileModeDefault)
	if err != nil {
		return pkgerrors.Wrapf(err, "could not open %s", path)
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(f, b.String()); err != nil {
		_ = f.Close()
		return pkgerrors.Wrapf(err, "could not append to %s", path)
	}
	return f.Close()
}
