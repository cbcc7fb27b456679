package response

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/wiretap/internal/capture"
	"github.com/sadopc/wiretap/internal/ui/theme"
)

func newPanelForTest() Model {
	th := theme.Default()
	m := New(th, theme.NewStyles(th))
	m.SetSize(100, 24)
	return m
}

func closedExchange() *capture.Exchange {
	return &capture.Exchange{
		ID:           "rs_test",
		RequestID:    "rq_test",
		CreatedAt:    "2024-01-01T00:00:00",
		State:        capture.StateClosed,
		URL:          "https://api.test/path",
		Version:      "HTTP/1.1",
		Status:       200,
		StatusReason: "OK",
		RemoteAddr:   "127.0.0.1:443",
		Headers:      []capture.Header{{Name: "Content-Type", Value: "application/json"}},
	}
}

func TestPanel_OpenExchangeShortCircuitsToLoading(t *testing.T) {
	m := newPanelForTest()

	ex := closedExchange()
	ex.State = capture.StateConnected
	if err := m.SetExchange(ex, "GET", "ignored"); err != nil {
		t.Fatal(err)
	}

	if !m.Loading() {
		t.Fatal("expected loading state for non-closed exchange")
	}
	if m.PlainTrace() != "" {
		t.Fatalf("no trace may be computed while loading, got %q", m.PlainTrace())
	}
}

func TestPanel_ClosedExchangeRendersTrace(t *testing.T) {
	m := newPanelForTest()
	if err := m.SetExchange(closedExchange(), "GET", "hello"); err != nil {
		t.Fatal(err)
	}

	if m.Loading() {
		t.Fatal("closed exchange must not be loading")
	}
	plain := m.PlainTrace()
	for _, want := range []string{
		"preparing request to https://api.test/path",
		"> GET /path HTTP/1.1",
		"> host: api.test",
		"< HTTP/1.1 200 OK",
		"< hello",
		"connected to api.test (127.0.0.1) port 443",
	} {
		if !strings.Contains(plain, want) {
			t.Errorf("trace missing %q:\n%s", want, plain)
		}
	}
}

func TestPanel_UnresolvedMethodRendersBlank(t *testing.T) {
	m := newPanelForTest()
	if err := m.SetExchange(closedExchange(), "", ""); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(m.PlainTrace(), ">  /path HTTP/1.1") {
		t.Fatalf("expected blank method in trace:\n%s", m.PlainTrace())
	}
}

func TestPanel_NilExchangeShowsEmptyState(t *testing.T) {
	m := newPanelForTest()
	if err := m.SetExchange(nil, "", ""); err != nil {
		t.Fatal(err)
	}
	if m.Loading() || m.PlainTrace() != "" {
		t.Fatal("nil exchange should reset the panel")
	}
	if !strings.Contains(m.View(), "Select an exchange") {
		t.Fatalf("empty view missing prompt: %q", m.View())
	}
}

func TestPanel_MalformedURLPropagates(t *testing.T) {
	m := newPanelForTest()
	ex := closedExchange()
	ex.URL = "https://api.test/%zz"
	if err := m.SetExchange(ex, "GET", ""); err == nil {
		t.Fatal("expected error for malformed exchange URL")
	}
}

func TestPanel_TabSwitching(t *testing.T) {
	m := newPanelForTest()
	m.SetExchange(closedExchange(), "GET", `{"ok":true}`)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	if m.active != tabBody {
		t.Fatalf("active tab = %d, want body", m.active)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.active != tabTrace {
		t.Fatalf("active tab after tab key = %d, want trace", m.active)
	}
}

func TestPanel_CopyWithoutTraceIsNoop(t *testing.T) {
	m := newPanelForTest()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	if cmd != nil {
		t.Fatal("copy with no trace should be a no-op")
	}
}

func TestBodyModel(t *testing.T) {
	styles := theme.NewStyles(theme.Default())
	body := NewBodyModel(styles)
	body.SetSize(40, 8)

	body.SetContent("", "")
	if !strings.Contains(body.View(), "Empty body") {
		t.Fatalf("empty body view = %q", body.View())
	}

	body.SetContent("plain text", "text/plain")
	if !strings.Contains(body.View(), "plain text") {
		t.Fatalf("body view missing content: %q", body.View())
	}
}

func TestDetectLexer(t *testing.T) {
	cases := map[string]string{
		"application/json; charset=utf-8": "json",
		"text/html":                       "html",
		"application/xml":                 "xml",
		"text/javascript":                 "javascript",
		"application/octet-stream":        "text",
		"":                                "text",
	}
	for ct, want := range cases {
		if got := detectLexer(ct); got != want {
			t.Errorf("detectLexer(%q) = %q, want %q", ct, got, want)
		}
	}
}

func TestContentTypeLookup(t *testing.T) {
	headers := []capture.Header{
		{Name: "X-Foo", Value: "bar"},
		{Name: "content-type", Value: "text/html"},
	}
	if got := contentType(headers); got != "text/html" {
		t.Fatalf("contentType = %q", got)
	}
	if got := contentType(nil); got != "" {
		t.Fatalf("contentType(nil) = %q", got)
	}
}
