//go:build unix

package process

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/foxy/pkg/errors"
)

func TestOSExecutorTimeoutKillsChildren(t *testing.T) {
	requireShell(t)

	marker := filepath.Join(t.TempDir(), "marker")
	_, err := NewExecutor(nil).Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "(sleep 1; touch " + marker + ") & wait"},
		Timeout: 200 * time.Millisecond,
	})
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Fatalf("err = %v, want TIMEOUT", err)
	}

	time.Sleep(1500 * time.Millisecond)
	if _, err := os.Stat(marker); err == nil {
		t.Error("background child outlived the timeout")
	}
}
