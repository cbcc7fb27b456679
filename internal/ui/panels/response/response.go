package response

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/wiretap/internal/capture"
	"github.com/sadopc/wiretap/internal/trace"
	"github.com/sadopc/wiretap/internal/ui/msgs"
	"github.com/sadopc/wiretap/internal/ui/theme"
)

type subTab int

const (
	tabTrace subTab = iota
	tabBody
)

var subTabLabels = []string{"Trace", "Body"}

// Model is the exchange panel: a verbose-curl trace of the selected
// exchange, with a body sub-tab. While the exchange is still open it
// shows only a de-emphasized spinner; no trace is computed until the
// exchange closes.
type Model struct {
	viewport viewport.Model
	body     BodyModel
	spinner  spinner.Model

	styles theme.Styles
	th     theme.Theme

	active  subTab
	focused bool
	loading bool
	hasEx   bool
	plain   string // unstyled trace, kept for copying
	width   int
	height  int
}

// New creates a new exchange panel model.
func New(t theme.Theme, s theme.Styles) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = s.Muted

	return Model{
		viewport: viewport.New(0, 0),
		body:     NewBodyModel(s),
		spinner:  sp,
		styles:   s,
		th:       t,
	}
}

// SetExchange populates the panel from an exchange and its two
// resolved lookups. For a non-closed exchange it short-circuits into
// the loading state. A malformed exchange URL is a precondition
// violation and is returned rather than rendered around.
func (m *Model) SetExchange(ex *capture.Exchange, method, body string) error {
	if ex == nil {
		m.hasEx = false
		m.loading = false
		m.plain = ""
		return nil
	}
	m.hasEx = true

	if !ex.State.Closed() {
		m.loading = true
		m.plain = ""
		return nil
	}
	m.loading = false

	tr, err := trace.Render(trace.Input{Exchange: ex, Method: method, Body: body})
	if err != nil {
		return err
	}
	m.plain = tr.String()
	m.viewport.SetContent(m.styledTrace(tr))
	m.viewport.GotoTop()

	m.body.SetContent(body, contentType(ex.Headers))
	return nil
}

// styledTrace styles the three blocks: connection subtle, request
// emphasized, response secondary. Block text itself stays verbatim.
func (m Model) styledTrace(tr trace.Trace) string {
	blocks := []string{
		m.styles.TraceConnection.Render(tr.Connection),
		m.styles.TraceRequest.Render(tr.Request),
		m.styles.TraceResponse.Render(tr.Response),
	}
	return strings.Join(blocks, "\n\n")
}

// PlainTrace returns the unstyled trace text, empty until a closed
// exchange has been set.
func (m Model) PlainTrace() string {
	return m.plain
}

// Loading reports whether the panel is in the loading state.
func (m Model) Loading() bool {
	return m.loading
}

// SetFocused sets whether this panel has focus.
func (m *Model) SetFocused(focused bool) {
	m.focused = focused
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h

	// Reserve space: 1 for tab bar, 2 for border
	innerW := w - 2
	innerH := h - 3
	if innerW < 0 {
		innerW = 0
	}
	if innerH < 0 {
		innerH = 0
	}

	m.viewport.Width = innerW
	m.viewport.Height = innerH
	m.body.SetSize(innerW, innerH)
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			m.active = (m.active + 1) % subTab(len(subTabLabels))
			return m, nil
		case "1":
			m.active = tabTrace
			return m, nil
		case "2":
			m.active = tabBody
			return m, nil
		case "y":
			if m.plain != "" {
				plain := m.plain
				return m, func() tea.Msg {
					if err := clipboard.WriteAll(plain); err != nil {
						return msgs.StatusMsg{Text: "copy failed: " + err.Error(), IsError: true}
					}
					return msgs.StatusMsg{Text: "trace copied"}
				}
			}
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}
	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	switch m.active {
	case tabTrace:
		m.viewport, cmd = m.viewport.Update(msg)
	case tabBody:
		m.body, cmd = m.body.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	border := m.styles.UnfocusedBorder
	if m.focused {
		border = m.styles.FocusedBorder
	}

	innerW := m.width - 2
	if innerW < 0 {
		innerW = 0
	}
	innerH := m.height - 2
	if innerH < 0 {
		innerH = 0
	}

	var content string
	switch {
	case m.loading:
		content = m.renderLoading(innerW, innerH)
	case !m.hasEx:
		content = m.renderEmpty(innerW, innerH)
	default:
		content = m.renderExchange(innerW, innerH)
	}

	return border.Width(innerW).Height(innerH).Render(content)
}

func (m Model) renderLoading(w, h int) string {
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.spinner.View())
}

func (m Model) renderEmpty(w, h int) string {
	msg := m.styles.Muted.Render("Select an exchange to see its trace")
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, msg)
}

func (m Model) renderExchange(w, h int) string {
	tabs := m.renderTabs(w)

	contentH := h - 1
	if contentH < 0 {
		contentH = 0
	}

	var body string
	switch m.active {
	case tabTrace:
		body = m.viewport.View()
	case tabBody:
		body = m.body.View()
	}
	body = lipgloss.NewStyle().Width(w).Height(contentH).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, tabs, body)
}

func (m Model) renderTabs(width int) string {
	var tabs []string
	for i, label := range subTabLabels {
		if subTab(i) == m.active {
			tabs = append(tabs, m.styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(label))
		}
	}
	row := strings.Join(tabs, " ")
	return lipgloss.NewStyle().Width(width).Render(row)
}

// contentType finds the response Content-Type header, if any.
func contentType(headers []capture.Header) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, "content-type") {
			return h.Value
		}
	}
	return ""
}
