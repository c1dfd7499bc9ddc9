package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteTemp creates a hidden temporary file in dir, hands it to write, and
// returns its path once the content is flushed and closed. On any failure
// the temporary file is removed, so callers never observe a partial file.
func WriteTemp(dir, name string, write func(w io.Writer) error) (string, error) {
	f, err := os.CreateTemp(dir, ".tmp-"+name+"-*")
	if err != nil {
		return "", fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmp := f.Name()

	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close temp for %s: %w", name, err)
	}
	return tmp, nil
}

// WriteFileAtomic writes path through a sibling temporary file and renames it
// into place only after write succeeded.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := WriteTemp(filepath.Dir(path), filepath.Base(path), write)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// CopyToTemp copies src into a temporary file inside dir and returns the
// temporary path. The caller renames or removes it.
func CopyToTemp(src, dir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	return WriteTemp(dir, filepath.Base(src), func(w io.Writer) error {
		if _, err := io.Copy(w, in); err != nil {
			return fmt.Errorf("copy %s: %w", src, err)
		}
		return nil
	})
}

// CopyFile copies src to dst byte for byte. dst is replaced atomically and
// is left untouched when the copy fails.
func CopyFile(src, dst string) error {
	tmp, err := CopyToTemp(src, filepath.Dir(dst))
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename into %s: %w", dst, err)
	}
	return nil
}

// Exists reports whether path exists. Errors other than "not exist" are
// returned so permission problems are not mistaken for absence.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
