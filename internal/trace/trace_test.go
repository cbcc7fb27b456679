package trace

import (
	"strings"
	"testing"

	"github.com/sadopc/wiretap/internal/capture"
)

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
	}
}

func TestRender_RequestLineUsesResolvedMethod(t *testing.T) {
	ex := closedExchange()
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(tr.Request, "> GET /path HTTP/1.1\n") {
		t.Fatalf("request block = %q", tr.Request)
	}
}

func TestRender_UnresolvedMethodRendersBlank(t *testing.T) {
	ex := closedExchange()
	tr, err := Render(Input{Exchange: ex})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(tr.Request, ">  /path HTTP/1.1\n") {
		t.Fatalf("request block = %q", tr.Request)
	}
}

func TestRender_HostHeaderSelection(t *testing.T) {
	ex := closedExchange()
	ex.RequestHeaders = []capture.Header{
		{Name: "Host", Value: "example.com"},
		{Name: "X-Foo", Value: "bar"},
	}
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tr.Request, "> host: example.com\n") {
		t.Fatalf("missing host line: %q", tr.Request)
	}
	if strings.Contains(tr.Request, "Host: example.com") {
		t.Fatalf("selected host header should be excluded from the list: %q", tr.Request)
	}
	if !strings.Contains(tr.Request, "> X-Foo: bar") {
		t.Fatalf("missing X-Foo header: %q", tr.Request)
	}
}

func TestRender_DuplicateHostHeadersAllExcluded(t *testing.T) {
	ex := closedExchange()
	ex.RequestHeaders = []capture.Header{
		{Name: "Host", Value: "first.example"},
		{Name: "host", Value: "second.example"},
		{Name: "X-Foo", Value: "bar"},
	}
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tr.Request, "> host: first.example\n") {
		t.Fatalf("host line should use the first match: %q", tr.Request)
	}
	if strings.Contains(tr.Request, "second.example") {
		t.Fatalf("every non-empty host header should be excluded: %q", tr.Request)
	}
}

func TestRender_HostFallsBackToURLHostname(t *testing.T) {
	ex := closedExchange()
	ex.RequestHeaders = []capture.Header{{Name: "X-Foo", Value: "bar"}}
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tr.Request, "> host: api.test\n") {
		t.Fatalf("missing fallback host line: %q", tr.Request)
	}
}

func TestRender_EmptyValueHostHeaderIsNotExcluded(t *testing.T) {
	ex := closedExchange()
	ex.RequestHeaders = []capture.Header{{Name: "Host", Value: ""}}
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tr.Request, "> host: api.test\n") {
		t.Fatalf("empty host header must not win selection: %q", tr.Request)
	}
	if !strings.Contains(tr.Request, "> Host: ") {
		t.Fatalf("empty-value host header must stay listed: %q", tr.Request)
	}
}

func TestRender_CreatedAtParsedAsUTC(t *testing.T) {
	ex := closedExchange()
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	want := "current time is Mon Jan  1 00:00:00 UTC 2024"
	if !strings.Contains(tr.Connection, want) {
		t.Fatalf("connection block = %q, want line %q", tr.Connection, want)
	}
}

func TestRender_BodyIncludedWithMarker(t *testing.T) {
	ex := closedExchange()
	tr, err := Render(Input{Exchange: ex, Method: "GET", Body: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(tr.Response, "\n< hello") {
		t.Fatalf("response block = %q", tr.Response)
	}
}

func TestRender_EmptyBodyLineIsKeptNotOmitted(t *testing.T) {
	ex := closedExchange()
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(tr.Response, "\n< ") {
		t.Fatalf("expected trailing empty body line, got %q", tr.Response)
	}
}

func TestRender_RemoteAddrFormatting(t *testing.T) {
	ex := closedExchange()
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tr.Connection, "connected to api.test (127.0.0.1) port 443") {
		t.Fatalf("connection block = %q", tr.Connection)
	}
}

func TestRender_MissingRemoteAddrDegenerateText(t *testing.T) {
	ex := closedExchange()
	ex.RemoteAddr = ""
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tr.Connection, "(undefined) port ") {
		t.Fatalf("connection block = %q", tr.Connection)
	}
}

func TestRender_ResponseHeaderOrderPreserved(t *testing.T) {
	ex := closedExchange()
	ex.Headers = []capture.Header{
		{Name: "Content-Type", Value: "text/plain"},
		{Name: "X-Id", Value: "1"},
	}
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	ct := strings.Index(tr.Response, "Content-Type: text/plain")
	id := strings.Index(tr.Response, "X-Id: 1")
	if ct < 0 || id < 0 || ct > id {
		t.Fatalf("headers out of order: %q", tr.Response)
	}
}

func TestRender_StatusLine(t *testing.T) {
	ex := closedExchange()
	ex.Status = 404
	ex.StatusReason = "Not Found"
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(tr.Response, "< HTTP/1.1 404 Not Found\n") {
		t.Fatalf("response block = %q", tr.Response)
	}
}

func TestRender_QueryAndFragmentInRequestTarget(t *testing.T) {
	ex := closedExchange()
	ex.URL = "https://api.test/search?q=go#frag"
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(tr.Request, "> GET /search?q=go#frag HTTP/1.1\n") {
		t.Fatalf("request block = %q", tr.Request)
	}
}

func TestRender_EmptyPathRendersAsRoot(t *testing.T) {
	ex := closedExchange()
	ex.URL = "https://api.test"
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(tr.Request, "> GET / HTTP/1.1\n") {
		t.Fatalf("request block = %q", tr.Request)
	}
}

func TestRender_NoRequestHeadersLeavesBlankMarkerLine(t *testing.T) {
	ex := closedExchange()
	tr, err := Render(Input{Exchange: ex, Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(tr.Request, "\n> ") {
		t.Fatalf("expected trailing empty header line, got %q", tr.Request)
	}
}

func TestRender_MalformedURLFails(t *testing.T) {
	ex := closedExchange()
	ex.URL = "https://api.test/%zz\x7f"
	if _, err := Render(Input{Exchange: ex, Method: "GET"}); err == nil {
		t.Fatal("expected error for malformed URL")
	}
}

func TestTrace_StringJoinsBlocksInOrder(t *testing.T) {
	tr := Trace{Connection: "c", Request: "req", Response: "res"}
	if got := tr.String(); got != "c\n\nreq\n\nres" {
		t.Fatalf("String() = %q", got)
	}
}
