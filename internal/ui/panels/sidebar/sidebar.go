package sidebar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"

	"github.com/sadopc/wiretap/internal/capture"
	"github.com/sadopc/wiretap/internal/ui/msgs"
	"github.com/sadopc/wiretap/internal/ui/theme"
)

// Model is the sidebar panel listing captured exchanges, most recent
// first.
type Model struct {
	exchanges []*capture.Exchange
	methods   []string // resolved request methods, parallel to exchanges
	filtered  []int    // indices into exchanges that match the filter
	cursor    int      // index into filtered

	width   int
	height  int
	focused bool

	filtering   bool
	filterInput textinput.Model

	theme  theme.Theme
	styles theme.Styles
}

// New creates a new sidebar model.
func New(t theme.Theme, s theme.Styles) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.CharLimit = 128

	return Model{
		theme:       t,
		styles:      s,
		filterInput: ti,
	}
}

// SetExchanges replaces the listed exchanges. methods carries the
// resolved request method per exchange; entries may be empty when the
// originating request is gone.
func (m *Model) SetExchanges(exchanges []*capture.Exchange, methods []string) {
	m.exchanges = exchanges
	m.methods = methods
	m.applyFilter()
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

// Filtering reports whether the filter input is capturing keys.
func (m Model) Filtering() bool {
	return m.filtering
}

// Selected returns the exchange under the cursor, or nil.
func (m Model) Selected() *capture.Exchange {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	return m.exchanges[m.filtered[m.cursor]]
}

// SetSize sets the panel dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets whether this panel has focus.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.filtering {
		return m.updateFilter(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink
	}

	if len(m.filtered) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g":
		m.cursor = 0
	case "G":
		m.cursor = len(m.filtered) - 1
	case "enter", "l":
		ex := m.exchanges[m.filtered[m.cursor]]
		return m, func() tea.Msg {
			return msgs.ExchangeSelectedMsg{ID: ex.ID}
		}
	case "d":
		ex := m.exchanges[m.filtered[m.cursor]]
		return m, func() tea.Msg {
			return msgs.DeleteExchangeMsg{ID: ex.ID}
		}
	}

	return m, nil
}

func (m Model) updateFilter(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "esc":
			m.filtering = false
			m.filterInput.Blur()
			if key.String() == "esc" {
				m.filterInput.SetValue("")
				m.applyFilter()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	return m, cmd
}

func (m *Model) applyFilter() {
	query := m.filterInput.Value()
	m.filtered = m.filtered[:0]

	if query == "" {
		for i := range m.exchanges {
			m.filtered = append(m.filtered, i)
		}
		return
	}

	labels := make([]string, len(m.exchanges))
	for i, ex := range m.exchanges {
		labels[i] = m.methodFor(i) + " " + ex.URL
	}
	for _, match := range fuzzy.Find(query, labels) {
		m.filtered = append(m.filtered, match.Index)
	}
}

func (m Model) methodFor(i int) string {
	if i < len(m.methods) {
		return m.methods[i]
	}
	return ""
}

func (m Model) View() string {
	border := m.styles.UnfocusedBorder
	if m.focused {
		border = m.styles.FocusedBorder
	}

	innerW := m.width - 2
	if innerW < 1 {
		innerW = 1
	}
	innerH := m.height - 2
	if innerH < 1 {
		innerH = 1
	}

	lines := []string{m.styles.Title.Render("Exchanges"), ""}

	if len(m.filtered) == 0 {
		lines = append(lines, m.styles.Muted.Render("  No exchanges yet"))
	} else {
		for vi, idx := range m.filtered {
			lines = append(lines, m.renderItem(idx, vi == m.cursor, innerW))
		}
	}

	content := strings.Join(lines, "\n")
	if m.filtering {
		content += "\n" + m.filterInput.View()
	}

	return border.Width(innerW).Height(innerH).Render(content)
}

func (m Model) renderItem(idx int, selected bool, width int) string {
	ex := m.exchanges[idx]

	method := m.methodFor(idx)
	methodStyle := lipgloss.NewStyle().Foreground(m.theme.MethodColor(method)).Bold(true)

	status := ""
	switch {
	case !ex.State.Closed():
		status = m.styles.Hint.Render(string(ex.State))
	case ex.Error != "":
		status = m.styles.Error.Render("ERR")
	default:
		status = lipgloss.NewStyle().
			Foreground(m.theme.StatusColor(ex.Status)).
			Render(fmt.Sprintf("%d", ex.Status))
	}

	line := fmt.Sprintf("%s %s %s %s",
		methodStyle.Render(padMethod(method)),
		status,
		truncate(ex.URL, width-20),
		m.styles.Muted.Render(age(ex.CreatedAt)),
	)

	if selected {
		return m.styles.Selected.Render("> " + line)
	}
	return "  " + line
}

// age renders the exchange creation time as a relative age. The
// stored value is naive UTC; re-attach the zone before comparing.
func age(createdAt string) string {
	t, err := time.Parse(time.RFC3339, createdAt+"Z")
	if err != nil {
		return ""
	}
	return humanize.Time(t)
}

func padMethod(method string) string {
	if method == "" {
		method = "?"
	}
	return fmt.Sprintf("%-6s", method)
}

func truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
