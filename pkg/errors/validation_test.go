package errors

import (
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid composer", "foo/bar", false},
		{"valid scoped npm", "@composer-asset/foo--bar", false},
		{"valid with dot", "my.package", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateComposerPackageName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"foo/bar", false},
		{"php-forge/foxy", false},
		{"symfony/polyfill-php80", false},
		{"my_vendor/my.package", false},
		{"vendor/double--dash", false},

		{"", true},
		{"bar", true},
		{"Foo/Bar", true},
		{"foo/bar/baz", true},
		{"-foo/bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateComposerPackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateComposerPackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPackage) {
				t.Errorf("expected INVALID_PACKAGE, got %v", GetCode(err))
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "vendor/foxy/composer-asset", false},
		{"dotted segment", "./vendor/..foo", false},
		{"trailing slash", "vendor/foxy/", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "vendor/../../etc", true},
		{"control", "vendor\x01", true},
		{"too long", string(make([]byte, 600)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
