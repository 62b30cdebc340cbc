// Package fsutil provides file system helpers shared by the import and
// rotation pipelines.
package fsutil

import (
	"io"
	"os"
	"regexp"
	"strings"
)

// MoveFile moves a file from src to dst, preferring an atomic rename and
// falling back to copy-and-remove when src and dst sit on different
// filesystems (the downloads, processing and current locations often do).
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// CopyFile copies a file from source to destination. The destination is
// created with mode 0644, or truncated if it exists.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// SanitizeFileName removes or replaces characters that are invalid in
// file names, keeping names portable across operating systems:
//
//   - invalid characters (<>:"/\|?* and control chars) become underscores
//   - trailing dots are removed
//   - runs of whitespace collapse to one space
//   - trailing whitespace is removed
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// EnsureDir creates a directory and all parents with mode 0755. Existing
// directories are not an error.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
