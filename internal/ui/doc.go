// Package ui provides the color themes shared by the presentation layers:
// ANSI escape codes for plain terminal output and lipgloss colors for boxed
// output. NO_COLOR and --no-color switch both to uncolored rendering.
package ui
