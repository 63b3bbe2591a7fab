package filesystem

import (
	"os"

	"github.com/joeywang/vidoer/domain/media"
)

// Checker implements media.FileChecker using the os package.
type Checker struct{}

// NewChecker creates a new filesystem checker.
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if path resolves to an existing file.
func (c *Checker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Ensure Checker implements media.FileChecker
var _ media.FileChecker = (*Checker)(nil)
