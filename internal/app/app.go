// Package app wires the sidebar, trace panel and status bar into the
// root bubbletea model and owns the store and executor handles.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/wiretap/internal/capture"
	"github.com/sadopc/wiretap/internal/config"
	"github.com/sadopc/wiretap/internal/store"
	"github.com/sadopc/wiretap/internal/ui/components"
	"github.com/sadopc/wiretap/internal/ui/layout"
	"github.com/sadopc/wiretap/internal/ui/msgs"
	"github.com/sadopc/wiretap/internal/ui/panels/response"
	"github.com/sadopc/wiretap/internal/ui/panels/sidebar"
	"github.com/sadopc/wiretap/internal/ui/theme"
)

// statusClearMsg clears a transient status bar message.
type statusClearMsg struct{}

// Model is the root application model.
type Model struct {
	store    *store.Store
	executor *capture.Executor
	keys     KeyMap

	sidebar   sidebar.Model
	trace     response.Model
	statusBar components.StatusBar

	focus          msgs.PanelFocus
	sidebarVisible bool
	width          int
	height         int

	prompting   bool
	promptInput textinput.Model

	theme  theme.Theme
	styles theme.Styles
}

// New builds the root model from configuration.
func New(cfg config.Config, st *store.Store) Model {
	th := theme.Resolve(cfg.Theme)
	styles := theme.NewStyles(th)

	ti := textinput.New()
	ti.Prompt = "url: "
	ti.Placeholder = "GET https://example.com"
	ti.CharLimit = 2048

	m := Model{
		store:          st,
		executor:       capture.NewExecutor(cfg.DataDir, cfg.Timeout),
		keys:           DefaultKeyMap(),
		sidebar:        sidebar.New(th, styles),
		trace:          response.New(th, styles),
		statusBar:      components.NewStatusBar(th, styles),
		sidebarVisible: true,
		promptInput:    ti,
		theme:          th,
		styles:         styles,
	}
	m.applyFocus()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listExchanges(), m.trace.Init())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		return m.handleKey(msg)

	case msgs.ExchangesListedMsg:
		if msg.Err != nil {
			cmd := m.status("history: "+msg.Err.Error(), true)
			return m, cmd
		}
		m.sidebar.SetExchanges(msg.Exchanges, m.resolveMethods(msg.Exchanges))
		return m, nil

	case msgs.ExchangeSelectedMsg:
		return m, m.loadExchange(msg.ID)

	case msgs.ExchangeLoadedMsg:
		if msg.Err != nil {
			cmd := m.status("load: "+msg.Err.Error(), true)
			return m, cmd
		}
		m.statusBar.SetExchange(msg.Exchange)
		if err := m.trace.SetExchange(msg.Exchange, msg.Method, msg.Body); err != nil {
			cmd := m.status("trace: "+err.Error(), true)
			return m, cmd
		}
		return m, nil

	case msgs.DeleteExchangeMsg:
		return m, m.deleteExchange(msg.ID)

	case msgs.RequestSentMsg:
		if msg.Err != nil {
			cmd := m.status("send: "+msg.Err.Error(), true)
			return m, cmd
		}
		return m, tea.Batch(
			m.listExchanges(),
			m.loadExchange(msg.Exchange.ID),
		)

	case msgs.StatusMsg:
		cmd := m.status(msg.Text, msg.IsError)
		return m, cmd

	case statusClearMsg:
		m.statusBar.ClearMessage()
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The filter input owns the keyboard while active.
	if m.focus == msgs.FocusSidebar && m.sidebar.Filtering() {
		return m.updateFocused(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.CycleFocus):
		if m.focus == msgs.FocusSidebar {
			m.focus = msgs.FocusTrace
		} else {
			m.focus = msgs.FocusSidebar
		}
		m.applyFocus()
		return m, nil

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.sidebarVisible = !m.sidebarVisible
		if !m.sidebarVisible {
			m.focus = msgs.FocusTrace
			m.applyFocus()
		}
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.NewRequest) && m.focus == msgs.FocusSidebar:
		m.prompting = true
		m.promptInput.SetValue("")
		m.promptInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		return m, m.listExchanges()
	}

	return m.updateFocused(msg)
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompting = false
		m.promptInput.Blur()
		return m, nil
	case "enter":
		input := strings.TrimSpace(m.promptInput.Value())
		m.prompting = false
		m.promptInput.Blur()
		if input == "" {
			return m, nil
		}
		method, rawURL := splitMethodURL(input)
		statusCmd := m.status("sending "+rawURL, false)
		return m, tea.Batch(statusCmd, m.sendRequest(method, rawURL))
	}

	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case msgs.FocusSidebar:
		m.sidebar, cmd = m.sidebar.Update(msg)
	case msgs.FocusTrace:
		m.trace, cmd = m.trace.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize() {
	l := layout.Calculate(m.width, m.height, m.sidebarVisible)
	m.sidebar.SetSize(l.SidebarWidth, l.ContentHeight)
	m.trace.SetSize(l.TraceWidth, l.ContentHeight)
	m.statusBar.SetWidth(l.Width)
}

func (m *Model) applyFocus() {
	m.sidebar.SetFocused(m.focus == msgs.FocusSidebar)
	m.trace.SetFocused(m.focus == msgs.FocusTrace)
}

func (m Model) View() string {
	l := layout.Calculate(m.width, m.height, m.sidebarVisible)

	var content string
	if l.SinglePanel || !l.SidebarVisible {
		content = m.trace.View()
	} else {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), m.trace.View())
	}

	bottom := m.statusBar.View()
	if m.prompting {
		bottom = m.promptInput.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, bottom)
}

// resolveMethods looks up the originating request method per exchange.
// A missing request yields an empty entry and the list renders "?".
func (m Model) resolveMethods(exchanges []*capture.Exchange) []string {
	methods := make([]string, len(exchanges))
	for i, ex := range exchanges {
		methods[i], _ = m.store.RequestMethod(ex.RequestID)
	}
	return methods
}

func (m Model) listExchanges() tea.Cmd {
	return func() tea.Msg {
		exchanges, err := m.store.ListExchanges(200)
		return msgs.ExchangesListedMsg{Exchanges: exchanges, Err: err}
	}
}

// loadExchange fetches the exchange and resolves its two lookups: the
// originating request's method and the decoded body text.
func (m Model) loadExchange(id string) tea.Cmd {
	return func() tea.Msg {
		ex, err := m.store.GetExchange(id)
		if err != nil {
			return msgs.ExchangeLoadedMsg{Err: err}
		}
		method, _ := m.store.RequestMethod(ex.RequestID)
		body, err := m.store.BodyText(ex)
		if err != nil {
			return msgs.ExchangeLoadedMsg{Err: err}
		}
		return msgs.ExchangeLoadedMsg{Exchange: ex, Method: method, Body: body.Data}
	}
}

func (m Model) deleteExchange(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.store.DeleteExchange(id); err != nil {
			return msgs.StatusMsg{Text: "delete: " + err.Error(), IsError: true}
		}
		exchanges, err := m.store.ListExchanges(200)
		return msgs.ExchangesListedMsg{Exchanges: exchanges, Err: err}
	}
}

func (m Model) sendRequest(method, rawURL string) tea.Cmd {
	return func() tea.Msg {
		req := &capture.Request{
			ID:        capture.NewRequestID(),
			CreatedAt: capture.Now(),
			Method:    method,
			URL:       rawURL,
		}
		if err := m.store.CreateRequest(req); err != nil {
			return msgs.RequestSentMsg{Err: err}
		}
		ex, err := m.executor.Send(context.Background(), req)
		if err != nil {
			return msgs.RequestSentMsg{Err: err}
		}
		if err := m.store.SaveExchange(ex); err != nil {
			return msgs.RequestSentMsg{Err: err}
		}
		return msgs.RequestSentMsg{Exchange: ex}
	}
}

func (m *Model) status(text string, isError bool) tea.Cmd {
	m.statusBar.SetMessage(text, isError)
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

// splitMethodURL parses prompt input of the form "METHOD url" or just
// "url" (GET implied).
func splitMethodURL(input string) (string, string) {
	fields := strings.Fields(input)
	if len(fields) >= 2 && isMethod(fields[0]) {
		return strings.ToUpper(fields[0]), strings.Join(fields[1:], " ")
	}
	return "GET", input
}

func isMethod(s string) bool {
	switch strings.ToUpper(s) {
	case "GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS":
		return true
	}
	return false
}
