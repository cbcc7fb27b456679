package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/wiretap/internal/capture"
	"github.com/sadopc/wiretap/internal/ui/theme"
)

// StatusBar renders the bottom status line: selected exchange summary
// on the left, transient messages on the right.
type StatusBar struct {
	th     theme.Theme
	styles theme.Styles

	exchange *capture.Exchange
	message  string
	isError  bool
	width    int
}

// NewStatusBar creates a status bar.
func NewStatusBar(t theme.Theme, s theme.Styles) StatusBar {
	return StatusBar{th: t, styles: s}
}

// SetWidth updates the bar width.
func (b *StatusBar) SetWidth(w int) {
	b.width = w
}

// SetExchange sets the exchange summarized on the left.
func (b *StatusBar) SetExchange(ex *capture.Exchange) {
	b.exchange = ex
}

// SetMessage sets a transient message shown on the right.
func (b *StatusBar) SetMessage(text string, isError bool) {
	b.message = text
	b.isError = isError
}

// ClearMessage removes the transient message.
func (b *StatusBar) ClearMessage() {
	b.message = ""
	b.isError = false
}

// View renders the bar.
func (b StatusBar) View() string {
	left := b.renderSummary()

	right := b.message
	if b.isError && right != "" {
		right = b.styles.Error.Render(right)
	}

	gap := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b StatusBar) renderSummary() string {
	if b.exchange == nil {
		return b.styles.Hint.Render("no exchange selected")
	}
	ex := b.exchange

	if !ex.State.Closed() {
		return fmt.Sprintf("%s  %s", ex.URL, b.styles.Hint.Render(string(ex.State)))
	}

	status := lipgloss.NewStyle().
		Foreground(b.th.StatusColor(ex.Status)).
		Bold(true).
		Render(fmt.Sprintf("%d %s", ex.Status, ex.StatusReason))

	parts := []string{
		status,
		ex.Elapsed.Round(time.Millisecond).String(),
		humanize.Bytes(uint64(ex.ContentLength)),
	}
	if ex.Error != "" {
		parts = append(parts, b.styles.Error.Render(ex.Error))
	}
	return strings.Join(parts, "  ")
}
