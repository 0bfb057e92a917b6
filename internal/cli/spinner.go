package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows the current step of a long-running check, such as probing
// the asset manager binaries, and ends with a status line.
//
// Frames are only drawn when the writer is a terminal. On other writers the
// spinner stays silent until one of the Stop methods prints the status line.
type Spinner struct {
	w       io.Writer
	animate bool
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	started bool
	once    sync.Once

	mu      sync.Mutex
	message string
	width   int // Widest line drawn, for clearing
}

// newSpinner creates a spinner writing to c.Stderr that stops when ctx is
// cancelled.
func (c *CLI) newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, c.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	if w == nil {
		w = io.Discard
	}
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		animate: isTerminal(w),
		parent:  ctx,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		message: message,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.started = true
	if !s.animate {
		close(s.stopped)
		return
	}
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// SetMessage replaces the step shown next to the spinner.
func (s *Spinner) SetMessage(format string, args ...any) {
	s.mu.Lock()
	s.message = fmt.Sprintf(format, args...)
	s.mu.Unlock()
}

// Message returns the current step.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	s.width = max(s.width, lipgloss.Width(line))
	fmt.Fprintf(s.w, "\r%s", line)
}

func (s *Spinner) clearLine() {
	if !s.animate {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
}

// Stop stops the animation and clears the line. It may be called more than
// once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
		if s.started {
			<-s.stopped
		}
		s.clearLine()
	})
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(format string, args ...any) {
	s.finish(styleIconSuccess.Render(iconSuccess), format, args...)
}

// StopWithWarning stops the spinner and prints a warning line.
func (s *Spinner) StopWithWarning(format string, args ...any) {
	s.finish(styleIconWarning.Render(iconWarning), format, args...)
}

// StopWithError stops the spinner and prints an error line.
func (s *Spinner) StopWithError(format string, args ...any) {
	s.finish(styleIconError.Render(iconError), format, args...)
}

func (s *Spinner) finish(icon, format string, args ...any) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s %s\n", icon, fmt.Sprintf(format, args...))
}

// Cancelled reports whether the spinner's context was cancelled.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
