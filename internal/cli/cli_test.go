package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/foxy/pkg/config"
	"github.com/matzehuels/foxy/pkg/errors"
	"github.com/matzehuels/foxy/pkg/process"
)

// fakeExecutor answers --version with version and fails the commands listed
// in failing with exit code 1.
type fakeExecutor struct {
	mu      sync.Mutex
	version string
	failing []string
	calls   []string
}

func (f *fakeExecutor) Run(_ context.Context, cmd process.Command) (process.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	line := cmd.String()
	f.calls = append(f.calls, line)
	if slices.Contains(cmd.Args, "--version") {
		if f.version == "" {
			return process.Result{ExitCode: -1}, errors.New(errors.ErrCodeNotFound, "%s not found", cmd.Name)
		}
		return process.Result{Output: f.version}, nil
	}
	if slices.Contains(f.failing, line) {
		return process.Result{ExitCode: 1}, nil
	}
	return process.Result{}, nil
}

func newTestCLI(exec process.Executor, env config.Env) *CLI {
	var out bytes.Buffer
	c := New(&out, log.InfoLevel)
	c.Executor = exec
	if env == nil {
		env = config.Env{}
	}
	c.Env = env
	c.Stdout = &out
	c.Stderr = &out
	return c
}

func execute(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	root := c.RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// newProject creates a PHP project with one installed asset package.
func newProject(t *testing.T, composerJSON string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "composer.json"), composerJSON)
	writeFile(t, filepath.Join(dir, "vendor", "composer", "installed.json"), `{
    "packages": [
        {"name": "acme/ui", "version": "1.0.0", "extra": {"foxy": true}, "install-path": "../acme/ui"}
    ]
}`)
	writeFile(t, filepath.Join(dir, "vendor", "acme", "ui", "package.json"), `{"name": "ui"}`)
	return dir
}

func TestConvertCommand(t *testing.T) {
	c := newTestCLI(&fakeExecutor{}, nil)

	out, err := execute(t, c, "convert", "1.2.3-beta", "1.2.3rc1")
	if err != nil {
		t.Fatal(err)
	}
	if out != "1.2.3-beta1\n1.2.3-RC1\n" {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, c, "convert", "--show-input", "1.2.3-beta")
	if err != nil {
		t.Fatal(err)
	}
	if out != "1.2.3-beta\t1.2.3-beta1\n" {
		t.Errorf("output = %q", out)
	}
}

func TestConvertCommandRequiresArgs(t *testing.T) {
	if _, err := execute(t, newTestCLI(&fakeExecutor{}, nil), "convert"); err == nil {
		t.Error("convert without versions should fail")
	}
}

func TestConfigGetCommand(t *testing.T) {
	dir := newProject(t, `{
    "name": "acme/app",
    "config": {
        "foxy": {
            "manager": "yarn",
            "manager-bin": {"yarn": "/usr/bin/yarnpkg"}
        }
    }
}`)
	writeFile(t, filepath.Join(dir, config.ProjectFile), "manager-timeout = 30\n")

	tests := []struct {
		name string
		args []string
		env  config.Env
		want string
	}{
		{"composer.json", []string{"manager"}, nil, `"yarn"`},
		{"per manager", []string{"manager-bin"}, nil, `"/usr/bin/yarnpkg"`},
		{"foxy.toml", []string{"manager-timeout"}, nil, `30`},
		{"default", []string{"fallback-asset"}, nil, `true`},
		{"other manager", []string{"manager-version", "--manager", "pnpm"}, nil, `">=7.0.0"`},
		{"environment", []string{"manager"}, config.Env{"FOXY__MANAGER": "bun"}, `"bun"`},
		{"unknown", []string{"no-such-key"}, nil, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCLI(&fakeExecutor{}, tt.env)
			args := append([]string{"config", "get", "-d", dir}, tt.args...)
			out, err := execute(t, c, args...)
			if err != nil {
				t.Fatal(err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("output = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConfigGetWithoutComposerJSON(t *testing.T) {
	_, err := execute(t, newTestCLI(&fakeExecutor{}, nil), "config", "get", "-d", t.TempDir(), "manager")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.ProjectFile), "manager-timeout = 30\n")

	if _, err := execute(t, newTestCLI(&fakeExecutor{}, nil), "init", "-d", dir, "--manager", "pnpm"); err != nil {
		t.Fatal(err)
	}

	obj, err := config.ReadProjectFile(filepath.Join(dir, config.ProjectFile))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := obj.String("manager"); v != "pnpm" {
		t.Errorf("manager = %q", v)
	}
	if !obj.Has("manager-timeout") {
		t.Error("existing keys should be kept")
	}
}

func TestInitUnknownManager(t *testing.T) {
	_, err := execute(t, newTestCLI(&fakeExecutor{}, nil), "init", "-d", t.TempDir(), "--manager", "gulp")
	if !errors.Is(err, errors.ErrCodeManagerNotFound) {
		t.Errorf("err = %v, want MANAGER_NOT_FOUND", err)
	}
}

func TestManagerItems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "yarn.lock"), "")
	exec := process.ExecutorFunc(func(_ context.Context, cmd process.Command) (process.Result, error) {
		if cmd.Name == "yarn" || cmd.Name == "npm" {
			return process.Result{Output: "1.22.0"}, nil
		}
		return process.Result{ExitCode: -1}, errors.New(errors.ErrCodeNotFound, "not found")
	})
	c := newTestCLI(exec, nil)

	items, err := c.managerItems(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []ManagerItem{
		{Name: "npm", Version: "1.22.0"},
		{Name: "pnpm"},
		{Name: "yarn", Version: "1.22.0", LockFile: true},
		{Name: "bun"},
	}
	if !slices.Equal(items, want) {
		t.Errorf("items = %+v, want %+v", items, want)
	}
}

func TestInstallCommand(t *testing.T) {
	dir := newProject(t, `{"name": "acme/app", "license": "MIT"}`)
	exec := &fakeExecutor{version: "10.2.0"}

	if _, err := execute(t, newTestCLI(exec, nil), "install", "-d", dir); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`"license": "MIT"`,
		`"@composer-asset/acme--ui": "file:./vendor/foxy/composer-asset/acme/ui"`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("package.json missing %s:\n%s", want, data)
		}
	}
	if want := []string{"npm --version", "npm install"}; !slices.Equal(exec.calls, want) {
		t.Errorf("calls = %v, want %v", exec.calls, want)
	}
}

func TestUpdateCommand(t *testing.T) {
	dir := newProject(t, `{"name": "acme/app"}`)
	writeFile(t, filepath.Join(dir, "package.json"), `{"private": true}`)
	writeFile(t, filepath.Join(dir, "node_modules", ".keep"), "")
	writeFile(t, filepath.Join(dir, "pnpm-lock.yaml"), "")
	exec := &fakeExecutor{version: "8.15.0"}

	if _, err := execute(t, newTestCLI(exec, nil), "update", "-d", dir); err != nil {
		t.Fatal(err)
	}
	if last := exec.calls[len(exec.calls)-1]; last != "pnpm update" {
		t.Errorf("last call = %q, want pnpm update", last)
	}
}

func TestInstallWithComposer(t *testing.T) {
	dir := newProject(t, `{"name": "acme/app"}`)
	exec := &fakeExecutor{version: "10.2.0"}

	if _, err := execute(t, newTestCLI(exec, nil), "install", "-d", dir, "--composer", "--composer-bin", "composer2"); err != nil {
		t.Fatal(err)
	}
	want := []string{"npm --version", "composer2 install --no-interaction", "npm install"}
	if !slices.Equal(exec.calls, want) {
		t.Errorf("calls = %v, want %v", exec.calls, want)
	}
}

func TestInstallFailureRestoresPackageJSON(t *testing.T) {
	dir := newProject(t, `{"name": "acme/app"}`)
	original := "{\n  \"name\": \"app\"\n}\n"
	writeFile(t, filepath.Join(dir, "package.json"), original)
	exec := &fakeExecutor{version: "10.2.0", failing: []string{"npm install"}}

	_, err := execute(t, newTestCLI(exec, nil), "install", "-d", dir)
	if !errors.Is(err, errors.ErrCodeProcessFailed) {
		t.Fatalf("err = %v, want PROCESS_FAILED", err)
	}

	got, _ := os.ReadFile(filepath.Join(dir, "package.json"))
	if string(got) != original {
		t.Errorf("package.json = %q, want %q", got, original)
	}
	if _, err := os.Stat(filepath.Join(dir, "vendor")); !os.IsNotExist(err) {
		t.Error("vendor should be removed without a composer.lock to restore")
	}
}

func TestInstallVersionMismatch(t *testing.T) {
	dir := newProject(t, `{"name": "acme/app", "config": {"foxy": {"manager-version": {"npm": "^11.0.0"}}}}`)
	exec := &fakeExecutor{version: "10.2.0"}

	_, err := execute(t, newTestCLI(exec, nil), "install", "-d", dir)
	if !errors.Is(err, errors.ErrCodeManagerVersion) {
		t.Errorf("err = %v, want MANAGER_VERSION", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "package.json")); !os.IsNotExist(err) {
		t.Error("package.json should not be written")
	}
}

func TestInstallDisabled(t *testing.T) {
	dir := newProject(t, `{"name": "acme/app"}`)
	exec := &fakeExecutor{}

	if _, err := execute(t, newTestCLI(exec, config.Env{"FOXY__ENABLED": "false"}), "install", "-d", dir); err != nil {
		t.Fatal(err)
	}
	if len(exec.calls) != 0 {
		t.Errorf("calls = %v, want none", exec.calls)
	}
}

func TestValidateCommand(t *testing.T) {
	dir := newProject(t, `{"name": "acme/app"}`)

	if _, err := execute(t, newTestCLI(&fakeExecutor{version: "1.1.0"}, nil), "validate", "-d", dir, "-m", "bun"); err != nil {
		t.Errorf("validate = %v", err)
	}

	_, err := execute(t, newTestCLI(&fakeExecutor{}, nil), "validate", "-d", dir, "-m", "bun")
	if !errors.Is(err, errors.ErrCodeManagerUnavailable) {
		t.Errorf("err = %v, want MANAGER_UNAVAILABLE", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, newTestCLI(&fakeExecutor{}, nil), "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "foxy version: ") {
		t.Errorf("output = %q", out)
	}
}
