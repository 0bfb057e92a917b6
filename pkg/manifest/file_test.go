package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/foxy/pkg/errors"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "package.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileRoundTrip(t *testing.T) {
	original := `{
  "name": "app",
  "contributors": [],
  "dependencies": {
    "@bar/foo": "^1.0.0"
  }
}
`
	path := writeTemp(t, original)
	f := NewFile(path)

	doc, err := f.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if f.Indent() != 2 {
		t.Errorf("Indent() = %d, want 2", f.Indent())
	}
	if keys := f.ArrayKeys(); len(keys) != 1 || keys[0] != "contributors" {
		t.Errorf("ArrayKeys() = %v", keys)
	}

	deps, _ := doc.Object("dependencies")
	deps.Set("@composer-asset/foo--bar", "file:./vendor/foo/bar")
	doc.Set("devDependencies", []any{})

	if err := f.Write(doc); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, _ := os.ReadFile(path)
	want := `{
  "name": "app",
  "contributors": [],
  "dependencies": {
    "@bar/foo": "^1.0.0",
    "@composer-asset/foo--bar": "file:./vendor/foo/bar"
  },
  "devDependencies": {}
}
`
	if string(got) != want {
		t.Errorf("written file =\n%s\nwant\n%s", got, want)
	}
}

func TestFileReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		code    errors.Code
	}{
		{"missing", nil, errors.ErrCodeNotFound},
		{"invalid json", ptr(`{"name":`), errors.ErrCodeInvalidManifest},
		{"scalar", ptr(`"name"`), errors.ErrCodeInvalidManifest},
		{"non-empty list", ptr(`["a"]`), errors.ErrCodeInvalidManifest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "package.json")
			if tt.content != nil {
				path = writeTemp(t, *tt.content)
			}
			_, err := NewFile(path).Read()
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestFileReadEmptyArray(t *testing.T) {
	doc, err := NewFile(writeTemp(t, "[]")).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Len() != 0 {
		t.Errorf("Len() = %d, want 0", doc.Len())
	}
}

func TestFileWriteNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "package.json")
	f := NewFile(path)
	if f.Exists() {
		t.Fatal("file should not exist yet")
	}

	doc := NewObject()
	doc.Set("name", "app")
	if err := f.Write(doc); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "{\n    \"name\": \"app\"\n}\n" {
		t.Errorf("written file = %q", got)
	}
	if !f.Exists() {
		t.Error("Exists() = false after Write")
	}
}

func ptr(s string) *string { return &s }
