package layout

// PanelLayout holds calculated dimensions for the sidebar + trace
// two-panel layout.
type PanelLayout struct {
	Width  int
	Height int

	SidebarWidth int
	TraceWidth   int

	ContentHeight int // height minus status bar

	SidebarVisible bool
	SinglePanel    bool
}

const (
	statusBarHeight = 1
	minSidebarWidth = 24
	maxSidebarWidth = 44
)

// Calculate computes the panel layout from terminal dimensions.
func Calculate(width, height int, sidebarVisible bool) PanelLayout {
	l := PanelLayout{
		Width:          width,
		Height:         height,
		SidebarVisible: sidebarVisible,
		ContentHeight:  height - statusBarHeight,
	}

	if l.ContentHeight < 1 {
		l.ContentHeight = 1
	}

	switch {
	case width < 70:
		l.SinglePanel = true
		l.SidebarVisible = false
		l.TraceWidth = width
	case !sidebarVisible:
		l.TraceWidth = width
	default:
		l.SidebarWidth = clamp(width/3, minSidebarWidth, maxSidebarWidth)
		l.TraceWidth = width - l.SidebarWidth
	}

	return l
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
