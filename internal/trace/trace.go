// Package trace formats a completed HTTP exchange as a verbose-curl
// style text trace: connection narrative, request block, response
// block. It is a pure transform over already-materialized data and
// performs no I/O.
package trace

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sadopc/wiretap/internal/capture"
)

// Input is everything the renderer consumes. Method comes from the
// originating request and may be empty while that lookup is pending;
// Body is the decoded response body text, possibly empty.
type Input struct {
	Exchange *capture.Exchange
	Method   string
	Body     string
}

// Trace holds the three rendered blocks, in display order.
type Trace struct {
	Connection string
	Request    string
	Response   string
}

// String joins the blocks with blank lines, for headless output.
func (t Trace) String() string {
	return t.Connection + "\n\n" + t.Request + "\n\n" + t.Response
}

// Render formats the exchange. The caller is expected to gate on
// Exchange.State.Closed() first; Render itself does not care about
// state. A malformed URL is a precondition violation and returns an
// error rather than degraded output.
func Render(in Input) (Trace, error) {
	ex := in.Exchange
	u, err := url.Parse(ex.URL)
	if err != nil {
		return Trace{}, fmt.Errorf("parsing exchange URL: %w", err)
	}

	hostHeader := displayHost(ex.RequestHeaders)
	if hostHeader == "" {
		hostHeader = u.Hostname()
	}

	return Trace{
		Connection: connectionBlock(ex, u),
		Request:    requestBlock(ex, u, in.Method, hostHeader),
		Response:   responseBlock(ex, in.Body),
	}, nil
}

// displayHost scans request headers in order for the first pair named
// "host" (case-insensitive) with a non-empty value and returns its
// value, or "". A host header with an empty value deliberately does
// not match; it stays in the listed headers verbatim.
func displayHost(headers []capture.Header) string {
	for _, h := range headers {
		if isHostHeader(h) {
			return h.Value
		}
	}
	return ""
}

// isHostHeader reports whether a header is consumed by the synthesized
// host line. These headers are dropped from the listed request headers;
// an empty-valued host header is not consumed and lists verbatim.
func isHostHeader(h capture.Header) bool {
	return strings.EqualFold(h.Name, "host") && h.Value != ""
}

func connectionBlock(ex *capture.Exchange, u *url.URL) string {
	lines := []string{
		"preparing request to " + ex.URL,
		"current time is " + formatCreatedAt(ex.CreatedAt),
		"connected to " + u.Hostname() + " (" + remoteHost(ex.RemoteAddr) + ") port " + remotePort(ex.RemoteAddr),
	}
	return strings.Join(lines, "\n")
}

func requestBlock(ex *capture.Exchange, u *url.URL, method, host string) string {
	headerLines := make([]string, 0, len(ex.RequestHeaders))
	for _, h := range ex.RequestHeaders {
		if isHostHeader(h) {
			continue
		}
		headerLines = append(headerLines, h.Name+": "+h.Value)
	}

	parts := []string{
		method + " " + requestTarget(u) + " " + ex.Version,
		"host: " + host,
		// Joined unconditionally: zero headers still contribute one
		// empty element, so the block ends with a bare marker line.
		strings.Join(headerLines, "\n> "),
	}
	return "> " + strings.Join(parts, "\n> ")
}

func responseBlock(ex *capture.Exchange, body string) string {
	headerLines := make([]string, 0, len(ex.Headers))
	for _, h := range ex.Headers {
		headerLines = append(headerLines, h.Name+": "+h.Value)
	}

	parts := []string{
		fmt.Sprintf("%s %d %s", ex.Version, ex.Status, ex.StatusReason),
		strings.Join(headerLines, "\n< "),
		body,
	}
	return "< " + strings.Join(parts, "\n< ")
}

// requestTarget rebuilds path + query + fragment from the parsed URL.
// An empty path renders as "/".
func requestTarget(u *url.URL) string {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		path += "#" + u.EscapedFragment()
	}
	return path
}

// formatCreatedAt interprets the stored naive timestamp as UTC by
// appending a literal Z before parsing, then renders it in the
// conventional human-readable form. A value that does not parse is
// shown raw rather than dropped.
func formatCreatedAt(createdAt string) string {
	t, err := time.Parse(time.RFC3339, createdAt+"Z")
	if err != nil {
		return createdAt
	}
	return t.Format(time.UnixDate)
}

// remoteHost and remotePort split the remote address at the first
// colon. An absent address degrades to the literal "undefined"
// placeholder with an empty port; this degenerate text is preserved
// behavior, not an error.
func remoteHost(addr string) string {
	if addr == "" {
		return "undefined"
	}
	if i := strings.Index(addr, ":"); i >= 0 {
		return addr[:i]
	}
	return addr
}

func remotePort(addr string) string {
	if i := strings.Index(addr, ":"); i >= 0 {
		return addr[i+1:]
	}
	return ""
}
