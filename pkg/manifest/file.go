package manifest

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/foxy/pkg/errors"
)

// File is a JSON manifest on disk. It remembers how the original file was
// laid out (indent width and keys written as empty arrays) so that Write
// produces output in the same style.
type File struct {
	path      string
	arrayKeys []string
	indent    int
	parsed    bool
}

// NewFile returns a File for path. Nothing is read until needed.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Exists reports whether the file exists.
func (f *File) Exists() bool {
	info, err := os.Stat(f.path)
	return err == nil && !info.IsDir()
}

// ArrayKeys returns the keys that must stay arrays when empty.
func (f *File) ArrayKeys() []string {
	f.parseOriginal(nil)
	return f.arrayKeys
}

// Indent returns the indent width of the original file.
func (f *File) Indent() int {
	f.parseOriginal(nil)
	return f.indent
}

// Read parses the file into an Object. A document that is not a JSON
// object is rejected with INVALID_MANIFEST; an empty JSON array counts as
// an empty object.
func (f *File) Read() (*Object, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read %s", f.path)
	}

	f.parsed = false
	f.parseOriginal(data)

	v, err := Decode(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s does not contain valid JSON", f.path)
	}

	switch t := v.(type) {
	case *Object:
		return t, nil
	case []any:
		if len(t) == 0 {
			return NewObject(), nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidManifest, "%s must contain a JSON object", f.path)
}

// Write serializes doc in the layout of the original file and replaces the
// file contents, creating parent directories as needed.
func (f *File) Write(doc any) error {
	f.parseOriginal(nil)

	data, err := Encode(doc)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", f.path)
	}
	content := Format(string(data), f.arrayKeys, f.indent, false) + "\n"

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(f.path, []byte(content), 0644)
}

// parseOriginal captures layout metadata once, from data when given or from
// the file on disk otherwise.
func (f *File) parseOriginal(data []byte) {
	if f.parsed {
		return
	}
	f.parsed = true

	if data == nil {
		data, _ = os.ReadFile(f.path)
	}
	f.arrayKeys = ParseArrayKeys(string(data))
	f.indent = ParseIndent(string(data))
}
