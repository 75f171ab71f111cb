// Package format holds the text helpers shared by the CLI: duration and
// number formatting, progress bars and ETA estimation across several runs.
package format
