package manifest

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// DefaultIndent is the indent width used when none can be detected.
const DefaultIndent = 4

var (
	arrayKeysRegex = regexp.MustCompile(`["']([\w\-.]+)["']:\s\[\]`)
	indentRegex    = regexp.MustCompile(`^[{\[]\r?\n( +)["']`)
	unicodeRegex   = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)
)

// ParseArrayKeys returns the keys written as an empty array ("key": []) in
// content, in order of first appearance.
func ParseArrayKeys(content string) []string {
	var keys []string
	for _, m := range arrayKeysRegex.FindAllStringSubmatch(strings.TrimSpace(content), -1) {
		if !slices.Contains(keys, m[1]) {
			keys = append(keys, m[1])
		}
	}
	return keys
}

// ParseIndent returns the number of spaces used to indent the first key of
// content, or DefaultIndent when the first line after the opening bracket is
// not space-indented.
func ParseIndent(content string) int {
	m := indentRegex.FindStringSubmatch(strings.TrimSpace(content))
	if m == nil {
		return DefaultIndent
	}
	return len(m[1])
}

// Format lays out a JSON document.
//
// With reformat set, the document is decoded and pretty-printed again,
// turning literal \uXXXX sequences and escaped slashes inside strings back
// into plain characters. The four-space indent is then swapped for indent
// spaces, and every "key": [] whose key is not in arrayKeys becomes
// "key": {}. Everything else in json is left byte-for-byte as it was.
func Format(json string, arrayKeys []string, indent int, reformat bool) string {
	if json == "" {
		return json
	}

	if reformat {
		json = reformatJSON(json)
	}

	if indent != DefaultIndent {
		json = strings.ReplaceAll(json, strings.Repeat(" ", DefaultIndent), strings.Repeat(" ", indent))
	}

	return replaceArrayByMap(json, arrayKeys)
}

// reformatJSON pretty-prints json. Input that is not a JSON object or array
// is returned untouched.
func reformatJSON(json string) string {
	v, err := Decode([]byte(json))
	if err != nil {
		return json
	}

	switch v.(type) {
	case *Object, []any:
	default:
		return json
	}

	v = walkStrings(v, func(s string) string {
		s = unicodeRegex.ReplaceAllStringFunc(s, func(m string) string {
			code, err := strconv.ParseUint(m[2:], 16, 32)
			if err != nil {
				return m
			}
			return string(rune(code))
		})
		return strings.ReplaceAll(s, `\/`, "/")
	})

	out, err := Encode(v)
	if err != nil {
		return json
	}
	return string(out)
}

// walkStrings applies fn to every string leaf of v.
func walkStrings(v any, fn func(string) string) any {
	switch t := v.(type) {
	case string:
		return fn(t)
	case *Object:
		for _, k := range t.keys {
			t.values[k] = walkStrings(t.values[k], fn)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = walkStrings(e, fn)
		}
		return t
	default:
		return v
	}
}

// replaceArrayByMap rewrites "key": [] to "key": {} for keys that were not
// written as arrays originally.
func replaceArrayByMap(json string, arrayKeys []string) string {
	return arrayKeysRegex.ReplaceAllStringFunc(json, func(match string) string {
		m := arrayKeysRegex.FindStringSubmatch(match)
		if slices.Contains(arrayKeys, m[1]) {
			return match
		}
		return strings.Replace(match, "[]", "{}", 1)
	})
}
