package ui

import (
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Spinner provides an animated spinner for indeterminate operations such as
// connecting to the database.
type Spinner struct {
	ui      *UI
	label   string
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
	stopped bool
	mu      sync.Mutex
}

// Spinner animation frames (braille pattern).
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a new animated spinner.
func (u *UI) NewSpinner(label string) *Spinner {
	return &Spinner{
		ui:    u,
		label: label,
		done:  make(chan struct{}),
	}
}

// Start begins the spinner animation. Plain output prints the label once.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	if !s.ui.shouldStyle() {
		s.ui.Printf("%s...", s.label)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		frame := 0
		spinnerStyle := lipgloss.NewStyle().Foreground(ColorPrimary)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.ui.Printf("\r%s %s...", spinnerStyle.Render(spinnerFrames[frame]), s.label)
				frame = (frame + 1) % len(spinnerFrames)
			}
		}
	}()
}

// halt stops the animation once and reports whether the spinner had started
func (s *Spinner) halt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.stopped {
		return false
	}
	s.stopped = true
	close(s.done)
	s.wg.Wait()
	return true
}

// Stop stops the spinner without showing a final status.
func (s *Spinner) Stop() {
	if s.halt() && s.ui.shouldStyle() {
		s.ui.Printf("\r\033[K")
	}
}

// Success stops the spinner and shows a success message.
func (s *Spinner) Success(msg string) {
	if !s.halt() {
		return
	}

	if !s.ui.shouldStyle() {
		s.ui.Printf(" %s\n", msg)
		return
	}

	s.ui.Printf("\r\033[K%s %s... %s\n", StyleSuccess.Render(SymbolSuccess), s.label, msg)
}

// Error stops the spinner and shows an error message.
func (s *Spinner) Error(msg string) {
	if !s.halt() {
		return
	}

	if !s.ui.shouldStyle() {
		s.ui.Printf(" %s\n", msg)
		return
	}

	s.ui.Printf("\r\033[K%s %s... %s\n", StyleError.Render(SymbolError), s.label, StyleError.Render(msg))
}
