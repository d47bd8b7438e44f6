// Package ui provides styled terminal output for the fundctl CLI.
// It uses the Charm.sh ecosystem for styling with automatic fallback
// to plain text for non-TTY environments and NO_COLOR.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// UI holds the terminal state and provides styled output methods.
type UI struct {
	IsTTY   bool
	Width   int
	NoColor bool

	// Out receives everything the Print helpers write
	Out io.Writer
}

// KV represents a key-value pair for summary displays.
type KV struct {
	Key   string
	Value string
}

// noColorEnv is the standard environment variable to disable colors.
var noColorEnv = os.Getenv("NO_COLOR") != ""

// New creates a new UI instance bound to stdout with TTY detection.
func New() *UI {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	width := 80
	if isTTY {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	return &UI{
		IsTTY:   isTTY,
		Width:   width,
		NoColor: noColorEnv,
		Out:     os.Stdout,
	}
}

// NewPlain creates a UI that never styles, writing to w.
func NewPlain(w io.Writer) *UI {
	return &UI{Width: 80, NoColor: true, Out: w}
}

// SetNoColor disables colors and animations.
func (u *UI) SetNoColor(noColor bool) {
	u.NoColor = noColor
}

// shouldStyle returns true if we should use styled output.
func (u *UI) shouldStyle() bool {
	return u.IsTTY && !u.NoColor
}

// Styled reports whether output is styled or plain text.
func (u *UI) Styled() bool {
	return u.shouldStyle()
}

func (u *UI) out() io.Writer {
	if u.Out == nil {
		return os.Stdout
	}
	return u.Out
}

// Println writes a line to the UI output.
func (u *UI) Println(a ...any) {
	fmt.Fprintln(u.out(), a...)
}

// Printf writes formatted text to the UI output.
func (u *UI) Printf(format string, a ...any) {
	fmt.Fprintf(u.out(), format, a...)
}

// Header renders a bordered header box.
func (u *UI) Header(title string) string {
	if !u.shouldStyle() {
		return fmt.Sprintf("=== %s ===", title)
	}

	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(0, 2)

	return style.Render(title)
}

// Section prints a section header preceded by a blank line.
func (u *UI) Section(title string) {
	if !u.shouldStyle() {
		u.Printf("\n--- %s ---\n", title)
		return
	}

	u.Printf("\n%s\n", lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Render(title))
}

// KeyValue renders a styled key-value pair.
func (u *UI) KeyValue(key, value string) string {
	if !u.shouldStyle() {
		return fmt.Sprintf("  %-12s %s", key+":", value)
	}

	keyStyle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Width(14)
	valueStyle := lipgloss.NewStyle().
		Bold(true)

	return "  " + keyStyle.Render(key) + " " + valueStyle.Render(value)
}

// Success renders a success message with a green checkmark.
func (u *UI) Success(msg string) string {
	if !u.shouldStyle() {
		return "[OK] " + msg
	}

	return StyleSuccess.Render(SymbolSuccess+" ") + msg
}

// Error renders an error message with a red X.
func (u *UI) Error(msg string) string {
	if !u.shouldStyle() {
		return "[FAILED] " + msg
	}

	return StyleError.Render(SymbolError + " " + msg)
}

// Warning renders a warning message.
func (u *UI) Warning(msg string) string {
	if !u.shouldStyle() {
		return "[WARN] " + msg
	}

	return StyleWarning.Render(SymbolWarning + " " + msg)
}

// Muted renders muted/dim text.
func (u *UI) Muted(msg string) string {
	if !u.shouldStyle() {
		return msg
	}

	return StyleMuted.Render(msg)
}

// Bold renders bold text.
func (u *UI) Bold(msg string) string {
	if !u.shouldStyle() {
		return msg
	}

	return lipgloss.NewStyle().Bold(true).Render(msg)
}

// SummaryBox renders a bordered summary section. A "Status" item is
// colored by whether it reads as success or failure.
func (u *UI) SummaryBox(title string, items []KV) string {
	if !u.shouldStyle() {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("\n=== %s ===\n", title))
		for _, item := range items {
			sb.WriteString(fmt.Sprintf("%-14s %s\n", item.Key+":", item.Value))
		}
		return sb.String()
	}

	maxKeyWidth := 0
	for _, item := range items {
		if len(item.Key) > maxKeyWidth {
			maxKeyWidth = len(item.Key)
		}
	}

	keyStyle := lipgloss.NewStyle().Foreground(ColorMuted).Width(maxKeyWidth + 2)
	valueStyle := lipgloss.NewStyle().Bold(true)

	var lines []string
	for _, item := range items {
		value := item.Value
		lower := strings.ToLower(value)
		switch {
		case item.Key == "Status" && (strings.Contains(lower, "success") || strings.Contains(lower, "pass")):
			value = StyleSuccess.Render(SymbolSuccess + " " + value)
		case item.Key == "Status" && strings.Contains(lower, "fail"):
			value = StyleError.Render(SymbolError + " " + value)
		default:
			value = valueStyle.Render(value)
		}
		lines = append(lines, "  "+keyStyle.Render(item.Key)+" "+value)
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSuccess)

	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorSuccess).
		Padding(0, 1)

	return "\n" + titleStyle.Render("  "+title) + "\n" + boxStyle.Render(strings.Join(lines, "\n"))
}

// StatusLine renders a named check with its outcome.
func (u *UI) StatusLine(name string, value string, status Status) string {
	if !u.shouldStyle() {
		prefix := ""
		switch status {
		case StatusSuccess:
			prefix = "PASS "
		case StatusError:
			prefix = "FAIL "
		case StatusPending:
			prefix = "SKIP "
		}
		return fmt.Sprintf("  %s%-20s %s", prefix, name, value)
	}

	nameStyle := lipgloss.NewStyle().Width(20)
	var symbol string
	var valueStyled string

	switch status {
	case StatusSuccess:
		symbol = StyleSuccess.Render(SymbolSuccess)
		valueStyled = value
	case StatusError:
		symbol = StyleError.Render(SymbolError)
		valueStyled = StyleError.Render(value)
	case StatusPending:
		symbol = StyleMuted.Render(SymbolPending)
		valueStyled = StyleMuted.Render(value)
	case StatusProgress:
		symbol = StyleProgress.Render(SymbolProgress)
		valueStyled = value
	default:
		symbol = " "
		valueStyled = value
	}

	return fmt.Sprintf("  %s %s %s", symbol, nameStyle.Render(name), valueStyled)
}

// Status represents the status of an operation.
type Status int

const (
	StatusNone Status = iota
	StatusPending
	StatusProgress
	StatusSuccess
	StatusError
)
