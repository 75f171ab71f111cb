package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/parfor/internal/config"
	"github.com/agbru/parfor/internal/format"
	"github.com/agbru/parfor/internal/sysmon"
	"github.com/agbru/parfor/internal/ui"
)

// FormatBanner renders the execution configuration in a rounded box drawn
// with the current theme's palette.
func FormatBanner(version string, cfg config.AppConfig) string {
	p := ui.GetCurrentTheme().Palette
	title := lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	label := lipgloss.NewStyle().Foreground(p.Dim)
	value := lipgloss.NewStyle().Foreground(p.Text)

	name := "parfor"
	if version != "" {
		name += " " + version
	}
	rows := [][2]string{
		{"workload", cfg.Workload},
		{"range", fmt.Sprintf("[%s, %s)", format.FormatCount(cfg.From), format.FormatCount(cfg.From+cfg.N))},
		{"strategy", cfg.Strategy},
		{"min partition", minLabel(cfg.MinPartitionSize)},
		{"parallelism", fmt.Sprintf("%d", cfg.Parallelism)},
		{"executor", cfg.Executor},
		{"timeout", cfg.Timeout.String()},
	}
	if cfg.MaxConcurrency > 0 {
		rows = append(rows, [2]string{"max concurrency", fmt.Sprintf("%d", cfg.MaxConcurrency)})
	}

	lines := []string{title.Render(name)}
	for _, r := range rows {
		lines = append(lines, label.Render(fmt.Sprintf("%-16s", r[0]))+value.Render(r[1]))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
	return box.Render(strings.Join(lines, "\n"))
}

// PrintExecutionConfig prints the banner.
func PrintExecutionConfig(out io.Writer, version string, cfg config.AppConfig) {
	fmt.Fprintln(out, FormatBanner(version, cfg))
}

// PrintExecutionMode describes whether one strategy runs or several are
// compared.
func PrintExecutionMode(out io.Writer, strategies int) {
	if strategies > 1 {
		fmt.Fprintf(out, "Mode: comparing %d strategies.\n", strategies)
		return
	}
	fmt.Fprintf(out, "Mode: single strategy.\n")
}

// DisplaySystemStats prints a one-shot sample of host CPU and memory usage
// next to the parallelism the loop planned for.
func DisplaySystemStats(out io.Writer, parallelism int) {
	s := sysmon.Sample()
	fmt.Fprintf(out, "\nHost:\n")
	fmt.Fprintf(out, "  Logical cores:   %d\n", sysmon.LogicalCores())
	fmt.Fprintf(out, "  Parallelism:     %d\n", parallelism)
	fmt.Fprintf(out, "  CPU usage:       %.1f%%\n", s.CPUPercent)
	fmt.Fprintf(out, "  Memory usage:    %.1f%% of %s\n", s.MemPercent, format.FormatBytes(s.MemTotal))
}
