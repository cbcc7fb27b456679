package response

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/pretty"

	"github.com/sadopc/wiretap/internal/ui/theme"
)

// BodyModel displays the decoded body with syntax highlighting. The
// trace tab shows the body raw; this tab is the readable view.
type BodyModel struct {
	viewport viewport.Model
	styles   theme.Styles
	width    int
	height   int
	wrap     bool
	hasBody  bool
	raw      string
	contType string
}

// NewBodyModel creates a new body viewer.
func NewBodyModel(s theme.Styles) BodyModel {
	return BodyModel{
		viewport: viewport.New(0, 0),
		styles:   s,
	}
}

// SetContent sets the body content and highlights it.
func (m *BodyModel) SetContent(body, contentType string) {
	m.raw = body
	m.contType = contentType
	m.hasBody = body != ""
	m.renderContent()
}

// SetSize updates the viewport dimensions.
func (m *BodyModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h
	if m.hasBody {
		m.renderContent()
	}
}

func (m *BodyModel) renderContent() {
	if !m.hasBody {
		return
	}

	src := m.raw
	lexerName := detectLexer(m.contType)

	// Pretty-print JSON before highlighting
	if lexerName == "json" {
		src = string(pretty.Pretty([]byte(src)))
	}

	m.viewport.SetContent(highlight(src, lexerName, m.width, m.wrap))
}

func (m BodyModel) Update(msg tea.Msg) (BodyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "w":
			m.wrap = !m.wrap
			m.renderContent()
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m BodyModel) View() string {
	if !m.hasBody {
		return m.styles.Muted.Render("Empty body")
	}
	return m.viewport.View()
}

// detectLexer maps Content-Type to a chroma lexer name.
func detectLexer(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return "json"
	case strings.Contains(ct, "html"):
		return "html"
	case strings.Contains(ct, "xml"):
		return "xml"
	case strings.Contains(ct, "css"):
		return "css"
	case strings.Contains(ct, "javascript"):
		return "javascript"
	default:
		return "text"
	}
}

// highlight applies chroma syntax highlighting to source code.
func highlight(source, lexerName string, width int, wrap bool) string {
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get("monokai")
	if style == nil {
		style = chromastyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}

	result := buf.String()
	if wrap && width > 0 {
		result = lipgloss.NewStyle().Width(width).Render(result)
	}
	return result
}
