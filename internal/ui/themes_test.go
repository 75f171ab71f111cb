package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestInitTheme(t *testing.T) {
	orig := GetCurrentTheme()
	defer SetCurrentTheme(orig)

	InitTheme(true)
	if got := GetCurrentTheme().Name; got != "none" {
		t.Errorf("InitTheme(true) theme = %q, want none", got)
	}
	if ColorRed() != "" || ColorReset() != "" {
		t.Error("no-color theme should yield empty escape codes")
	}
}

func TestInitTheme_NoColorEnv(t *testing.T) {
	orig := GetCurrentTheme()
	defer SetCurrentTheme(orig)

	t.Setenv("NO_COLOR", "")
	InitTheme(false)
	if got := GetCurrentTheme().Name; got != "none" {
		t.Errorf("theme with NO_COLOR set = %q, want none", got)
	}
}

func TestSetTheme(t *testing.T) {
	orig := GetCurrentTheme()
	defer SetCurrentTheme(orig)

	tests := []struct {
		name string
		want string
	}{
		{"dark", "dark"},
		{"light", "light"},
		{"none", "none"},
		{"solarized", "dark"},
	}
	for _, tt := range tests {
		SetTheme(tt.name)
		if got := GetCurrentTheme().Name; got != tt.want {
			t.Errorf("SetTheme(%q) -> %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestColorAccessors(t *testing.T) {
	orig := GetCurrentTheme()
	defer SetCurrentTheme(orig)

	SetCurrentTheme(DarkTheme)
	if ColorRed() != DarkTheme.Error || ColorGreen() != DarkTheme.Success || ColorBold() != "\033[1m" {
		t.Error("color accessors should follow the active theme")
	}
	if _, ok := NoColorTheme.Palette.Border.(lipgloss.NoColor); !ok {
		t.Error("NoColorTheme palette should use lipgloss.NoColor")
	}
}
