package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color scheme for terminal output. Each field holds an ANSI
// escape code.
type Theme struct {
	Name      string
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
	Bold      string
	Underline string
	Reset     string

	// Palette is the lipgloss rendition of the same scheme.
	Palette Palette
}

// Palette holds lipgloss colors for boxed output such as the banner.
type Palette struct {
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Text    lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",  // Bright blue
		Secondary: "\033[38;5;245m", // Grey
		Success:   "\033[38;5;82m",  // Bright green
		Warning:   "\033[38;5;220m", // Yellow
		Error:     "\033[38;5;196m", // Red
		Info:      "\033[38;5;141m", // Purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
		Palette: Palette{
			Border:  lipgloss.Color("39"),
			Accent:  lipgloss.Color("141"),
			Text:    lipgloss.Color("#E0E0E0"),
			Dim:     lipgloss.Color("245"),
			Success: lipgloss.Color("82"),
			Error:   lipgloss.Color("196"),
		},
	}

	// LightTheme is optimized for light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",  // Dark blue
		Secondary: "\033[38;5;240m", // Dark grey
		Success:   "\033[38;5;28m",  // Dark green
		Warning:   "\033[38;5;130m", // Orange
		Error:     "\033[38;5;124m", // Dark red
		Info:      "\033[38;5;54m",  // Dark purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
		Palette: Palette{
			Border:  lipgloss.Color("27"),
			Accent:  lipgloss.Color("54"),
			Text:    lipgloss.Color("#202020"),
			Dim:     lipgloss.Color("240"),
			Success: lipgloss.Color("28"),
			Error:   lipgloss.Color("124"),
		},
	}

	// NoColorTheme disables all color output.
	NoColorTheme = Theme{
		Name: "none",
		Palette: Palette{
			Border:  lipgloss.NoColor{},
			Accent:  lipgloss.NoColor{},
			Text:    lipgloss.NoColor{},
			Dim:     lipgloss.NoColor{},
			Success: lipgloss.NoColor{},
			Error:   lipgloss.NoColor{},
		},
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name ("dark", "light", "none"). Unknown names
// select the dark theme.
func SetTheme(name string) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	switch name {
	case "light":
		currentTheme = LightTheme
	case "none":
		currentTheme = NoColorTheme
	default:
		currentTheme = DarkTheme
	}
}

// InitTheme selects the theme from the --no-color flag and the NO_COLOR
// environment variable (https://no-color.org/). Any value of NO_COLOR,
// including empty, disables colors.
func InitTheme(noColor bool) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	if noColor {
		currentTheme = NoColorTheme
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		currentTheme = NoColorTheme
		return
	}
	currentTheme = DarkTheme
}
