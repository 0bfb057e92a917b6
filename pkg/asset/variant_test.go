package asset

import (
	"slices"
	"testing"
)

func TestVariants(t *testing.T) {
	var names []string
	for _, v := range Variants() {
		names = append(names, v.Name())
	}
	if !slices.Equal(names, []string{"npm", "pnpm", "yarn", "bun"}) {
		t.Errorf("Variants() = %v", names)
	}

	if v, ok := LookupVariant("pnpm"); !ok || v.LockFile() != "pnpm-lock.yaml" {
		t.Errorf("LookupVariant(pnpm) = %v, %v", v, ok)
	}
	if _, ok := LookupVariant("gulp"); ok {
		t.Error("LookupVariant(gulp) should fail")
	}
}

func TestYarnArgs(t *testing.T) {
	tests := []struct {
		version string
		install []string
		update  []string
		check   []string
	}{
		{"1.22.19", []string{"install", "--non-interactive"}, []string{"upgrade", "--non-interactive"}, []string{"check", "--non-interactive"}},
		{"", []string{"install", "--non-interactive"}, []string{"upgrade", "--non-interactive"}, []string{"check", "--non-interactive"}},
		{"2.0.0", []string{"install"}, []string{"up"}, nil},
		{"4.1.0", []string{"install"}, []string{"up"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			y := Yarn{}
			if got := y.InstallArgs(tt.version); !slices.Equal(got, tt.install) {
				t.Errorf("InstallArgs() = %v, want %v", got, tt.install)
			}
			if got := y.UpdateArgs(tt.version); !slices.Equal(got, tt.update) {
				t.Errorf("UpdateArgs() = %v, want %v", got, tt.update)
			}
			if got := y.CheckArgs(tt.version); !slices.Equal(got, tt.check) {
				t.Errorf("CheckArgs() = %v, want %v", got, tt.check)
			}
		})
	}
}

func TestLockFiles(t *testing.T) {
	tests := map[string]string{
		"npm":  "package-lock.json",
		"pnpm": "pnpm-lock.yaml",
		"yarn": "yarn.lock",
		"bun":  "bun.lockb",
	}
	for name, want := range tests {
		v, _ := LookupVariant(name)
		if got := v.LockFile(); got != want {
			t.Errorf("%s LockFile() = %q, want %q", name, got, want)
		}
	}
}
