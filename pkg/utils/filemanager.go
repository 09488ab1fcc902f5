// =============================================================================
// Preston RPA - File Manager Utility
// =============================================================================
//
// File management helpers for the replay pipeline:
//   - Workbook archival (moving fully replayed files out of the way)
//   - Directory management
//   - Unique file naming for debug artifacts
//
// ARCHIVAL STRATEGY:
//   - A workbook is moved to the archive directory only after a fully
//     clean, uncancelled run.
//   - Partially replayed or failed workbooks stay where they are.
//   - Name collisions in the archive are resolved with a timestamp suffix.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EnsureDir creates the directory (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// MoveToDir moves the file into dir, creating dir as needed. When a file
// with the same name already exists in dir, the moved file gets a
// timestamp suffix instead of overwriting it.
//
// RETURNS:
//   - The path to the moved file.
//   - An error if the move fails.
func MoveToDir(src, dir string) (string, error) {
	if err := EnsureDir(dir); err != nil {
		return "", err
	}

	dst := filepath.Join(dir, filepath.Base(src))
	if FileExists(dst) {
		dst = filepath.Join(dir, TimestampName(filepath.Base(src)))
	}

	if err := os.Rename(src, dst); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(src, dst); err != nil {
			return "", fmt.Errorf("failed to copy file to %s: %w", dir, err)
		}
		if err := os.Remove(src); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return dst, nil
}

// TimestampName inserts a timestamp before the file extension.
// Example: "march.xlsx" -> "march_20240115_143022.xlsx".
func TimestampName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102_150405"), ext)
}

// UniqueName generates a collision-free file name with the given extension,
// used for debug screenshots and other transient artifacts.
func UniqueName(prefix, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s_%s%s", prefix, uuid.New().String(), ext)
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
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

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}
