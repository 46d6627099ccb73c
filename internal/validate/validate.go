// Package validate guards the paths WorkLog reads and writes.
package validate

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/manav03panchal/worklog/internal/errors"
)

// MaxNameLength is the longest file name served or written.
const MaxNameLength = 255

// Directory checks a user-supplied directory setting. The empty string is
// valid and selects the default location.
func Directory(path string) error {
	if path == "" {
		return nil
	}
	if HasControlChars(path) {
		return errors.Wrap(errors.ErrInvalidDirectory, "contains control characters")
	}
	if path != strings.TrimSpace(path) {
		return errors.Wrap(errors.ErrInvalidDirectory, "has leading or trailing whitespace")
	}
	return nil
}

// FileName checks that name is a single path element that cannot escape
// the directory it is joined to.
func FileName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return errors.Wrapf(errors.ErrInvalidFileName, "%q", name)
	case len(name) > MaxNameLength:
		return errors.Wrapf(errors.ErrInvalidFileName, "longer than %d bytes", MaxNameLength)
	case strings.ContainsAny(name, `/\`), IsPathTraversal(name):
		return errors.Wrapf(errors.ErrInvalidFileName, "%q is not a plain file name", name)
	case HasControlChars(name):
		return errors.Wrap(errors.ErrInvalidFileName, "contains control characters")
	}
	return nil
}

// IsPathTraversal checks if a path contains parent directory references.
func IsPathTraversal(path string) bool {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return true
		}
	}
	return false
}

// IsWithinDirectory checks if path resolves to a location inside baseDir.
func IsWithinDirectory(path, baseDir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// HasControlChars reports whether s contains any control character.
func HasControlChars(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

// JoinWithin joins name to dir and fails if the result would leave dir.
func JoinWithin(dir, name string) (string, error) {
	if err := FileName(name); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if !IsWithinDirectory(path, dir) {
		return "", errors.Wrapf(errors.ErrInvalidFileName, "%q escapes %s", name, dir)
	}
	return path, nil
}
