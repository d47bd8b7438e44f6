package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar tracks a fixed number of steps that can each succeed or fail.
type ProgressBar struct {
	ui      *UI
	bar     progress.Model
	label   string
	total   int
	ok      int
	failed  int
	start   time.Time
	mu      sync.Mutex
	written bool
}

// NewProgressBar creates a new progress bar.
func (u *UI) NewProgressBar(label string, total int) *ProgressBar {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	return &ProgressBar{
		ui:    u,
		bar:   bar,
		label: label,
		total: total,
		start: time.Now(),
	}
}

// Step records one finished step. Plain output prints one line per step.
func (p *ProgressBar) Step(ok bool, detail string) {
	p.mu.Lock()
	if ok {
		p.ok++
	} else {
		p.failed++
	}
	done, okCount, failed := p.ok+p.failed, p.ok, p.failed
	p.mu.Unlock()

	if !p.ui.shouldStyle() {
		status := "Success"
		if !ok {
			status = "Error"
		}
		p.ui.Printf("  %s %d/%d: %s\n", status, done, p.total, detail)
		return
	}

	pct := 1.0
	if p.total > 0 {
		pct = float64(done) / float64(p.total)
	}
	if pct > 1 {
		pct = 1
	}

	labelStyle := lipgloss.NewStyle().Width(12)
	counts := StyleMuted.Render(fmt.Sprintf("%d/%d", done, p.total))
	if failed > 0 {
		counts += " " + StyleError.Render(fmt.Sprintf("%d failed", failed))
	}

	p.written = true
	p.ui.Printf("\r\033[K  %s %s %s %s",
		labelStyle.Render(p.label),
		p.bar.ViewAs(pct),
		counts,
		StyleMuted.Render(fmt.Sprintf("(%d ok)", okCount)),
	)
}

// Complete finishes the progress bar with a summary line.
func (p *ProgressBar) Complete() {
	p.mu.Lock()
	okCount, failed := p.ok, p.failed
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.mu.Unlock()

	if !p.ui.shouldStyle() {
		return
	}

	labelStyle := lipgloss.NewStyle().Width(12)
	symbol := StyleSuccess.Render(SymbolSuccess)
	summary := StyleSuccess.Render(fmt.Sprintf("%d/%d committed", okCount, p.total))
	if failed > 0 {
		symbol = StyleWarning.Render(SymbolWarning)
		summary = StyleWarning.Render(fmt.Sprintf("%d/%d committed, %d rolled back", okCount, p.total, failed))
	}

	p.ui.Printf("\r\033[K  %s %s %s %s\n",
		symbol,
		labelStyle.Render(p.label),
		summary,
		StyleMuted.Render(elapsed.String()),
	)
}

// Fail finishes the progress bar with an error indicator.
func (p *ProgressBar) Fail(err error) {
	if !p.ui.shouldStyle() {
		p.ui.Printf("FAILED: %v\n", err)
		return
	}

	labelStyle := lipgloss.NewStyle().Width(12)
	prefix := ""
	if p.written {
		prefix = "\r\033[K"
	}

	p.ui.Printf("%s  %s %s %s\n",
		prefix,
		StyleError.Render(SymbolError),
		labelStyle.Render(p.label),
		StyleError.Render(err.Error()),
	)
}
