package manifest

import (
	"slices"
	"testing"
)

func TestFormat(t *testing.T) {
	content := `{"name":"test","contributors":[],"dependencies":{"@foo\/bar":"^1.0.0"},"devDependencies":[]}`
	want := `{
  "name": "test",
  "contributors": {},
  "dependencies": {
    "@foo/bar": "^1.0.0"
  },
  "devDependencies": {}
}`

	if got := Format(content, nil, 2, true); got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatKeepsArrayKeys(t *testing.T) {
	content := `{
    "name": "test",
    "contributors": [],
    "files": []
}`
	want := `{
    "name": "test",
    "contributors": [],
    "files": {}
}`

	if got := Format(content, []string{"contributors"}, 4, false); got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatWithoutReformatTouchesNothingElse(t *testing.T) {
	content := "{\n    \"a\":   \"x\",\n    \"b\": []\n}"
	want := "{\n    \"a\":   \"x\",\n    \"b\": {}\n}"

	if got := Format(content, nil, 4, false); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatEmpty(t *testing.T) {
	if got := Format("", []string{"a"}, 2, true); got != "" {
		t.Errorf("Format(\"\") = %q, want empty", got)
	}
}

func TestFormatScalarUntouched(t *testing.T) {
	if got := Format(`"just a string"`, nil, 4, true); got != `"just a string"` {
		t.Errorf("Format() = %q", got)
	}
}

func TestFormatUnescapeUnicode(t *testing.T) {
	content := `{"name":"\\u0048\\u0065\\u006c\\u006c\\u006f"}`
	want := "{\n  \"name\": \"Hello\"\n}"

	if got := Format(content, nil, 2, true); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatUnescapeSlashes(t *testing.T) {
	content := `{"url":"https:\\\/\\\/example.com"}`
	want := "{\n    \"url\": \"https://example.com\"\n}"

	if got := Format(content, nil, 4, true); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestParseArrayKeys(t *testing.T) {
	content := `{
  "name": "test",
  "contributors": [],
  "dependencies": {},
  "files": [],
  "nested": {
    "contributors": []
  }
}`
	want := []string{"contributors", "files"}

	if got := ParseArrayKeys(content); !slices.Equal(got, want) {
		t.Errorf("ParseArrayKeys() = %v, want %v", got, want)
	}
	if got := ParseArrayKeys(""); len(got) != 0 {
		t.Errorf("ParseArrayKeys(\"\") = %v, want empty", got)
	}
}

func TestParseIndent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"two spaces", "{\n  \"name\": \"test\"\n}", 2},
		{"four spaces", "{\n    \"name\": \"test\"\n}", 4},
		{"crlf", "{\r\n   \"name\": \"test\"\r\n}", 3},
		{"array", "[\n  \"a\"\n]", 2},
		{"tabs", "{\n\t\"name\": \"test\"\n}", DefaultIndent},
		{"compact", `{"name":"test"}`, DefaultIndent},
		{"empty", "", DefaultIndent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseIndent(tt.content); got != tt.want {
				t.Errorf("ParseIndent() = %d, want %d", got, tt.want)
			}
		})
	}
}
