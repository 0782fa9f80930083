package render

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/kamilpajak/leafcheck/internal/lifecycle"
)

// Terminal renders lifecycle states for the CLI. Progress and status go to
// stderr; results go to stdout in the selected format.
type Terminal struct {
	stdout      io.Writer
	stderr      io.Writer
	format      Format
	interactive bool

	mu   sync.Mutex
	spin *spinner.Spinner
	err  error
}

// NewTerminal creates a terminal renderer. The spinner is only used when
// interactive is true.
func NewTerminal(stdout, stderr io.Writer, format Format, interactive bool) *Terminal {
	return &Terminal{
		stdout:      stdout,
		stderr:      stderr,
		format:      format,
		interactive: interactive,
	}
}

// Observe implements lifecycle.Observer.
func (t *Terminal) Observe(s lifecycle.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch s.Kind {
	case lifecycle.Submitting:
		if t.format == FormatHuman {
			_, _ = color.New(color.FgHiBlack).Fprintf(t.stderr, "Uploading %s...\n", s.Image)
		}
	case lifecycle.Pending:
		t.startSpinner(s.Image)
	case lifecycle.Succeeded, lifecycle.Failed:
		t.stopSpinner()
		t.err = t.writeTerminal(s)
	}
}

// Release implements lifecycle.Observer. It stops the spinner if one is
// running.
func (t *Terminal) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopSpinner()
}

// Spinning reports whether the renderer currently holds a spinner.
func (t *Terminal) Spinning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.spin != nil
}

// Err returns the last error hit while writing a result.
func (t *Terminal) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Terminal) startSpinner(image string) {
	t.stopSpinner()
	if !t.interactive {
		if t.format == FormatHuman {
			fmt.Fprintln(t.stderr, "Waiting for diagnosis...")
		}
		return
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(t.stderr))
	s.Suffix = fmt.Sprintf(" Analyzing %s...", image)
	s.Start()
	t.spin = s
}

func (t *Terminal) stopSpinner() {
	if t.spin == nil {
		return
	}
	t.spin.Stop()
	t.spin = nil
}

func (t *Terminal) writeTerminal(s lifecycle.State) error {
	switch t.format {
	case FormatJSON:
		return writeJSON(t.stdout, s)
	case FormatYAML:
		return writeYAML(t.stdout, s)
	}

	if s.Kind == lifecycle.Failed {
		_, _ = color.New(color.FgRed, color.Bold).Fprintf(t.stderr, "✗ Analysis failed: %s\n", s.Message)
		return nil
	}
	_, _ = color.New(color.FgGreen).Fprintf(t.stderr, "✓ Analysis complete: %s\n", s.Image)
	PrintDiagnosis(t.stderr, t.stdout, s.Model)
	return nil
}
