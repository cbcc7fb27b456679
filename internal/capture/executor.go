package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Executor sends HTTP requests and materializes Exchange records from
// them. Response bodies are streamed to files under DataDir so the
// record itself stays small; the store's BodyText loader reads them
// back on demand.
type Executor struct {
	client  *http.Client
	dataDir string
}

// NewExecutor creates an executor writing body files under dataDir.
func NewExecutor(dataDir string, timeout time.Duration) *Executor {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Executor{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		dataDir: dataDir,
	}
}

// Validate checks that a request is well-formed enough to send.
func (e *Executor) Validate(req *Request) error {
	if req.URL == "" {
		return fmt.Errorf("URL is required")
	}
	if req.Method == "" {
		return fmt.Errorf("method is required")
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("URL must be absolute")
	}
	return nil
}

// Send executes the request and returns the finished exchange record.
// Transport failures do not return an error: they are captured on the
// record (Error set, state closed) so the exchange still shows up in
// history, matching how the record owner treats failed sends.
func (e *Executor) Send(ctx context.Context, req *Request) (*Exchange, error) {
	if err := e.Validate(req); err != nil {
		return nil, err
	}

	ex := &Exchange{
		ID:             NewExchangeID(),
		RequestID:      req.ID,
		CreatedAt:      Now(),
		UpdatedAt:      Now(),
		State:          StateInitialized,
		URL:            req.URL,
		RequestHeaders: append([]Header(nil), req.Headers...),
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}

	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Conn != nil {
				ex.RemoteAddr = info.Conn.RemoteAddr().String()
			}
		},
	}
	httpReq = httpReq.WithContext(httptrace.WithClientTrace(httpReq.Context(), trace))

	start := time.Now()
	resp, err := e.client.Do(httpReq)
	if err != nil {
		ex.Error = err.Error()
		ex.State = StateClosed
		ex.Elapsed = time.Since(start)
		ex.UpdatedAt = Now()
		return ex, nil
	}
	defer resp.Body.Close()

	// Headers received: the exchange is connected.
	ex.State = StateConnected
	ex.Version = resp.Proto
	ex.Status = resp.StatusCode
	ex.StatusReason = statusReason(resp.Status, resp.StatusCode)
	ex.Headers = flattenHeader(resp.Header)

	path, n, err := e.writeBody(ex.ID, resp.Body)
	if err != nil {
		ex.Error = err.Error()
	}
	ex.BodyPath = path
	ex.ContentLength = n
	ex.Elapsed = time.Since(start)
	ex.State = StateClosed
	ex.UpdatedAt = Now()
	return ex, nil
}

func (e *Executor) writeBody(exchangeID string, r io.Reader) (string, int64, error) {
	dir := filepath.Join(e.dataDir, "bodies")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("creating body dir: %w", err)
	}
	path := filepath.Join(dir, exchangeID)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("creating body file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return path, n, fmt.Errorf("writing body: %w", err)
	}
	return path, n, nil
}

// statusReason strips the leading numeric code from a status line like
// "200 OK".
func statusReason(status string, code int) string {
	return strings.TrimPrefix(strings.TrimPrefix(status, strconv.Itoa(code)), " ")
}

// flattenHeader converts an http.Header map to ordered pairs. Go's
// client does not expose wire order, so keys are sorted for a stable
// record; per-key value order is preserved.
func flattenHeader(h http.Header) []Header {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Header
	for _, k := range keys {
		for _, v := range h[k] {
			out = append(out, Header{Name: k, Value: v})
		}
	}
	return out
}
