package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/wiretap/internal/capture"
	"github.com/sadopc/wiretap/internal/config"
	"github.com/sadopc/wiretap/internal/store"
	"github.com/sadopc/wiretap/internal/ui/msgs"
)

func newAppForTest(t *testing.T) (Model, *store.Store) {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	m := New(cfg, st)
	m.width = 100
	m.height = 30
	m.resize()
	return m, st
}

func seedExchange(t *testing.T, st *store.Store, bodyDir string) *capture.Exchange {
	t.Helper()
	req := &capture.Request{
		ID:        "rq_seed",
		CreatedAt: "2024-01-01T00:00:00",
		Method:    "GET",
		URL:       "https://api.test/users",
	}
	if err := st.CreateRequest(req); err != nil {
		t.Fatal(err)
	}

	bodyPath := filepath.Join(bodyDir, "rs_seed")
	if err := os.WriteFile(bodyPath, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	ex := &capture.Exchange{
		ID:            "rs_seed",
		RequestID:     "rq_seed",
		CreatedAt:     "2024-01-01T00:00:00",
		UpdatedAt:     "2024-01-01T00:00:01",
		State:         capture.StateClosed,
		URL:           "https://api.test/users",
		Version:       "HTTP/1.1",
		Status:        200,
		StatusReason:  "OK",
		RemoteAddr:    "127.0.0.1:443",
		BodyPath:      bodyPath,
		ContentLength: 5,
		Headers:       []capture.Header{{Name: "Content-Type", Value: "text/plain"}},
	}
	if err := st.SaveExchange(ex); err != nil {
		t.Fatal(err)
	}
	return ex
}

func TestApp_SelectionLoadsTraceThroughLookups(t *testing.T) {
	m, st := newAppForTest(t)
	seedExchange(t, st, t.TempDir())

	cmd := m.loadExchange("rs_seed")
	loaded, ok := cmd().(msgs.ExchangeLoadedMsg)
	if !ok {
		t.Fatalf("unexpected msg type %T", cmd())
	}
	if loaded.Err != nil {
		t.Fatal(loaded.Err)
	}
	if loaded.Method != "GET" {
		t.Fatalf("method = %q, want GET", loaded.Method)
	}
	if loaded.Body != "hello" {
		t.Fatalf("body = %q, want hello", loaded.Body)
	}

	next, _ := m.Update(loaded)
	m = next.(Model)
	plain := m.trace.PlainTrace()
	for _, want := range []string{
		"preparing request to https://api.test/users",
		"> GET /users HTTP/1.1",
		"< HTTP/1.1 200 OK",
		"< hello",
	} {
		if !strings.Contains(plain, want) {
			t.Errorf("trace missing %q:\n%s", want, plain)
		}
	}
}

func TestApp_MissingRequestLoadsBlankMethod(t *testing.T) {
	m, st := newAppForTest(t)
	ex := seedExchange(t, st, t.TempDir())
	ex.RequestID = "rq_gone"
	if err := st.SaveExchange(ex); err != nil {
		t.Fatal(err)
	}

	loaded := m.loadExchange(ex.ID)().(msgs.ExchangeLoadedMsg)
	if loaded.Err != nil {
		t.Fatal(loaded.Err)
	}
	if loaded.Method != "" {
		t.Fatalf("method = %q, want blank for missing request", loaded.Method)
	}
}

func TestApp_ListRefreshPopulatesSidebar(t *testing.T) {
	m, st := newAppForTest(t)
	seedExchange(t, st, t.TempDir())

	listed := m.listExchanges()().(msgs.ExchangesListedMsg)
	if listed.Err != nil {
		t.Fatal(listed.Err)
	}
	if len(listed.Exchanges) != 1 {
		t.Fatalf("listed %d exchanges, want 1", len(listed.Exchanges))
	}

	next, _ := m.Update(listed)
	m = next.(Model)
	if got := m.sidebar.Selected(); got == nil || got.ID != "rs_seed" {
		t.Fatalf("sidebar selection = %+v, want rs_seed", got)
	}
}

func TestApp_DeleteRefreshesList(t *testing.T) {
	m, st := newAppForTest(t)
	seedExchange(t, st, t.TempDir())

	msg := m.deleteExchange("rs_seed")()
	listed, ok := msg.(msgs.ExchangesListedMsg)
	if !ok {
		t.Fatalf("unexpected msg type %T", msg)
	}
	if len(listed.Exchanges) != 0 {
		t.Fatalf("listed %d exchanges after delete, want 0", len(listed.Exchanges))
	}
}

func TestApp_FocusCycleAndSidebarToggle(t *testing.T) {
	m, _ := newAppForTest(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlW})
	m = next.(Model)
	if m.focus != msgs.FocusTrace {
		t.Fatalf("focus = %v after cycle, want trace", m.focus)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = next.(Model)
	if m.sidebarVisible {
		t.Fatal("sidebar should be hidden after toggle")
	}
	if !strings.Contains(m.View(), "Select an exchange") {
		t.Fatal("trace panel should fill the view when sidebar is hidden")
	}
}

func TestApp_PromptSendFlow(t *testing.T) {
	m, _ := newAppForTest(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = next.(Model)
	if !m.prompting {
		t.Fatal("expected prompt after n")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.prompting {
		t.Fatal("esc should cancel the prompt")
	}
}

func TestApp_StatusMessageLifecycle(t *testing.T) {
	m, _ := newAppForTest(t)

	next, cmd := m.Update(msgs.StatusMsg{Text: "trace copied"})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected a clear timer command")
	}
	if !strings.Contains(m.statusBar.View(), "trace copied") {
		t.Fatal("status bar should show the message")
	}

	next, _ = m.Update(statusClearMsg{})
	m = next.(Model)
	if strings.Contains(m.statusBar.View(), "trace copied") {
		t.Fatal("status bar should clear the message")
	}
}

func TestSplitMethodURL(t *testing.T) {
	cases := []struct {
		input  string
		method string
		url    string
	}{
		{"https://api.test", "GET", "https://api.test"},
		{"post https://api.test", "POST", "https://api.test"},
		{"DELETE https://api.test/x", "DELETE", "https://api.test/x"},
		{"notamethod https://api.test", "GET", "notamethod https://api.test"},
	}
	for _, c := range cases {
		method, url := splitMethodURL(c.input)
		if method != c.method || url != c.url {
			t.Errorf("splitMethodURL(%q) = %q %q, want %q %q",
				c.input, method, url, c.method, c.url)
		}
	}
}
