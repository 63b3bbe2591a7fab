package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File describes one received upload after the multipart layer has written it
// to disk. The path owns the file's lifetime: it is removed after successful
// processing, on validation failure, or by the age-based purge.
type File struct {
	Path         string
	DeclaredName string
	SizeBytes    int64
	Extension    string
}

// NewFile stats path and captures the received file's identity. The extension
// comes from the client's declared name, normalized to lowercase without the
// leading dot.
func NewFile(path, declaredName string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat uploaded file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("uploaded path is not a regular file: %s", path)
	}

	return &File{
		Path:         path,
		DeclaredName: declaredName,
		SizeBytes:    info.Size(),
		Extension:    NormalizeExtension(declaredName),
	}, nil
}

// NormalizeExtension returns name's extension lowercased without the dot.
func NormalizeExtension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
