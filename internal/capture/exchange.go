package capture

import (
	"time"

	"github.com/google/uuid"
)

// CreatedAtLayout is the stored timestamp form: naive UTC, no zone marker.
// Consumers that need an instant re-attach the zone (see trace package).
const CreatedAtLayout = "2006-01-02T15:04:05.000000"

// Header is a single name/value pair. Slices of Header preserve wire
// order; they are never sorted or deduplicated.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// State is the lifecycle state of an exchange.
type State string

const (
	StateInitialized State = "initialized"
	StateConnected   State = "connected"
	StateClosed      State = "closed"
)

// Closed reports whether the exchange reached its terminal state.
func (s State) Closed() bool {
	return s == StateClosed
}

// Request is the originating request of an exchange.
type Request struct {
	ID        string
	CreatedAt string
	Method    string
	URL       string
	Headers   []Header
	Body      []byte
}

// Exchange is an immutable snapshot of one executed (or in-flight) HTTP
// exchange. It is created when the exchange starts and transitions State
// at most once into StateClosed.
type Exchange struct {
	ID        string
	RequestID string
	CreatedAt string
	UpdatedAt string

	State         State
	URL           string
	Version       string
	Status        int
	StatusReason  string
	RemoteAddr    string // host:port; empty means unknown
	BodyPath      string
	ContentLength int64
	Elapsed       time.Duration
	Error         string

	RequestHeaders []Header
	Headers        []Header
}

// NewRequestID returns a fresh request identifier.
func NewRequestID() string {
	return "rq_" + uuid.NewString()
}

// NewExchangeID returns a fresh exchange identifier.
func NewExchangeID() string {
	return "rs_" + uuid.NewString()
}

// Now returns the current time in the stored naive-UTC form.
func Now() string {
	return time.Now().UTC().Format(CreatedAtLayout)
}
