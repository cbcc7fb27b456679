package msgs

import "github.com/sadopc/wiretap/internal/capture"

// PanelFocus identifies the focusable panels.
type PanelFocus int

const (
	FocusSidebar PanelFocus = iota
	FocusTrace
)

// ExchangeSelectedMsg is emitted when an exchange is selected in the
// sidebar.
type ExchangeSelectedMsg struct {
	ID string
}

// ExchangeLoadedMsg carries a selected exchange together with its two
// resolved lookups. Method may be empty when the originating request
// is unknown; the trace renders it blank rather than erroring.
type ExchangeLoadedMsg struct {
	Exchange *capture.Exchange
	Method   string
	Body     string
	Err      error
}

// ExchangesListedMsg carries a refreshed history listing.
type ExchangesListedMsg struct {
	Exchanges []*capture.Exchange
	Err       error
}

// RequestSentMsg is emitted when a one-shot send finishes.
type RequestSentMsg struct {
	Exchange *capture.Exchange
	Err      error
}

// DeleteExchangeMsg requests deleting an exchange from history.
type DeleteExchangeMsg struct {
	ID string
}

// StatusMsg sets a temporary status bar message.
type StatusMsg struct {
	Text    string
	IsError bool
}
