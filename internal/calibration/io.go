package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/parfor/internal/format"
	"github.com/agbru/parfor/internal/parallel"
	"github.com/agbru/parfor/internal/ui"
)

// printCalibrationResults formats and prints the calibration results table.
func printCalibrationResults(out io.Writer, results []calibrationResult, bestSize int) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sMin partition%s\t│ %sPlan%s\t│ %sExecution Time%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s\t┼%s\t┼%s\n", strings.Repeat("─", 14), strings.Repeat("─", 22), strings.Repeat("─", 25))
	for _, res := range results {
		plan := res.Decision.Mode.String()
		if res.Decision.Mode == parallel.Parallel {
			plan = fmt.Sprintf("parallel, chunk %s", format.FormatCount(res.Decision.ChunkSize))
		}
		durationStr := fmt.Sprintf("%sN/A%s", ui.ColorRed(), ui.ColorReset())
		if res.Err == nil {
			durationStr = format.FormatExecutionDuration(res.Duration)
			if res.Duration == 0 {
				durationStr = "< 1µs"
			}
		}
		highlight := ""
		if res.MinPartitionSize == bestSize && res.Err == nil {
			highlight = fmt.Sprintf(" %s(Optimal)%s", ui.ColorGreen(), ui.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%s%s\t│ %s\t│ %s%s%s%s\n",
			ui.ColorCyan(), candidateLabel(res.MinPartitionSize), ui.ColorReset(),
			plan, ui.ColorYellow(), durationStr, ui.ColorReset(), highlight)
	}
	tw.Flush()
}
