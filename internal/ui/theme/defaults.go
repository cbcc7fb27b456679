package theme

import "github.com/charmbracelet/lipgloss"

// CatppuccinMocha is the default dark theme.
var CatppuccinMocha = Theme{
	Name:    "Catppuccin Mocha",
	Base:    lipgloss.Color("#1e1e2e"),
	Mantle:  lipgloss.Color("#181825"),
	Surface: lipgloss.Color("#313244"),
	Overlay: lipgloss.Color("#45475a"),

	Text:    lipgloss.Color("#cdd6f4"),
	Subtext: lipgloss.Color("#a6adc8"),
	Muted:   lipgloss.Color("#585b70"),

	Mauve:  lipgloss.Color("#cba6f7"),
	Red:    lipgloss.Color("#f38ba8"),
	Peach:  lipgloss.Color("#fab387"),
	Yellow: lipgloss.Color("#f9e2af"),
	Green:  lipgloss.Color("#a6e3a1"),
	Teal:   lipgloss.Color("#94e2d5"),
	Sky:    lipgloss.Color("#89dceb"),
	Blue:   lipgloss.Color("#89b4fa"),

	BorderFocused:   lipgloss.Color("#cba6f7"),
	BorderUnfocused: lipgloss.Color("#585b70"),
}

// Nord is an alternative cool theme.
var Nord = Theme{
	Name:    "Nord",
	Base:    lipgloss.Color("#2e3440"),
	Mantle:  lipgloss.Color("#272c36"),
	Surface: lipgloss.Color("#3b4252"),
	Overlay: lipgloss.Color("#434c5e"),

	Text:    lipgloss.Color("#eceff4"),
	Subtext: lipgloss.Color("#d8dee9"),
	Muted:   lipgloss.Color("#4c566a"),

	Mauve:  lipgloss.Color("#b48ead"),
	Red:    lipgloss.Color("#bf616a"),
	Peach:  lipgloss.Color("#d08770"),
	Yellow: lipgloss.Color("#ebcb8b"),
	Green:  lipgloss.Color("#a3be8c"),
	Teal:   lipgloss.Color("#8fbcbb"),
	Sky:    lipgloss.Color("#88c0d0"),
	Blue:   lipgloss.Color("#81a1c1"),

	BorderFocused:   lipgloss.Color("#88c0d0"),
	BorderUnfocused: lipgloss.Color("#4c566a"),
}

// Default returns the default theme.
func Default() Theme {
	return CatppuccinMocha
}

// Resolve looks up a theme by name, falling back to the default.
func Resolve(name string) Theme {
	switch name {
	case "nord":
		return Nord
	case "catppuccin-mocha", "":
		return CatppuccinMocha
	default:
		return CatppuccinMocha
	}
}
