package asset

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matzehuels/foxy/pkg/errors"
	"github.com/matzehuels/foxy/pkg/process"
)

func TestFinder(t *testing.T) {
	tests := []struct {
		name      string
		request   string
		lockFiles []string
		available map[string]bool
		want      string
		code      errors.Code
	}{
		{"by name", "yarn", nil, nil, "yarn", ""},
		{"unknown name", "gulp", nil, nil, "", errors.ErrCodeManagerNotFound},
		{"lock file wins", "", []string{"yarn.lock"}, map[string]bool{"npm": true}, "yarn", ""},
		{"first lock file in order", "", []string{"bun.lockb", "pnpm-lock.yaml"}, nil, "pnpm", ""},
		{"first available", "", nil, map[string]bool{"pnpm": true, "bun": true}, "pnpm", ""},
		{"none", "", nil, nil, "", errors.ErrCodeManagerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.lockFiles {
				touch(t, filepath.Join(dir, f))
			}
			exec := process.ExecutorFunc(func(_ context.Context, cmd process.Command) (process.Result, error) {
				if tt.available[cmd.Name] {
					return process.Result{Output: "1.0.0"}, nil
				}
				return process.Result{ExitCode: -1}, errors.New(errors.ErrCodeNotFound, "%s not found", cmd.Name)
			})
			finder := NewFinder(Managers(Options{
				Config:   newConfig(t, nil, nil),
				Executor: exec,
				Dir:      dir,
			})...)

			m, err := finder.Find(context.Background(), tt.request)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("Find() = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if m.Name() != tt.want {
				t.Errorf("Find() = %s, want %s", m.Name(), tt.want)
			}
		})
	}
}
