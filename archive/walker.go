// Package archive reads zip based document packages.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// MaxPartSize limits uncompressed size of a single package part.
const MaxPartSize = 256 << 20

// WalkFunc is called for each file in archive visited by Walk. If an error
// is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Walk visits all files in the archive with names starting with pattern, in
// archive order. Directories are skipped. Entries with absolute paths or ".."
// components make the whole archive invalid.
func Walk(archive, pattern string, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, pattern) {
			if err := walkFn(archive, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Part is a single entry of a package, kept in memory.
type Part struct {
	Name     string
	Method   uint16
	Modified time.Time
	Data     []byte
}

// ReadParts loads every file of the package keeping archive order, so the
// package could be written back with the same layout.
func ReadParts(archive string) ([]Part, error) {
	var parts []Part
	err := Walk(archive, "", func(_ string, f *zip.File) error {
		if f.UncompressedSize64 > MaxPartSize {
			return fmt.Errorf("zip entry %q: too large (%d bytes)", f.Name, f.UncompressedSize64)
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("zip entry %q: %w", f.Name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(io.LimitReader(rc, MaxPartSize+1))
		if err != nil {
			return fmt.Errorf("zip entry %q: %w", f.Name, err)
		}
		if len(data) > MaxPartSize {
			return fmt.Errorf("zip entry %q: too large", f.Name)
		}
		parts = append(parts, Part{Name: f.Name, Method: f.Method, Modified: f.Modified, Data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parts, nil
}

// isSafePath returns false for absolute paths and paths with ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
