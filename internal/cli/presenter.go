package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/agbru/parfor/internal/errors"
	"github.com/agbru/parfor/internal/format"
	"github.com/agbru/parfor/internal/metrics"
	"github.com/agbru/parfor/internal/orchestration"
	"github.com/agbru/parfor/internal/progress"
	"github.com/agbru/parfor/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress delegates to DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRuns int, out io.Writer) {
	DisplayProgress(wg, progressChan, numRuns, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter for terminal
// output.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
	_ orchestration.ErrorHandler      = CLIResultPresenter{}
)

// comparisonColumns are the headers of the comparison table, in order.
var comparisonColumns = []string{"Strategy", "Min", "Plan", "Duration", "Status"}

// PresentComparisonTable prints one row per strategy. Cells are padded by
// hand because tabwriter counts ANSI escape bytes as width.
func (CLIResultPresenter) PresentComparisonTable(results []orchestration.RunResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")

	rows := make([][]string, len(results))
	widths := make([]int, len(comparisonColumns))
	for i, c := range comparisonColumns {
		widths[i] = len(c)
	}
	for i, res := range results {
		rows[i] = []string{
			res.Strategy.Name,
			minLabel(res.Strategy.MinPartitionSize),
			planLabel(res),
			durationLabel(res.Duration),
		}
		for j, cell := range rows[i] {
			widths[j] = max(widths[j], len(cell))
		}
	}

	for i, c := range comparisonColumns {
		fmt.Fprintf(out, "%s%s%s", ui.ColorUnderline(), c, ui.ColorReset())
		if i < len(comparisonColumns)-1 {
			fmt.Fprint(out, padRight("", widths[i]-len(c)+3))
		}
	}
	fmt.Fprintln(out)

	cellColors := []func() string{ui.ColorBlue, ui.ColorCyan, ui.ColorMagenta, ui.ColorYellow}
	for i, res := range results {
		for j, cell := range rows[i] {
			fmt.Fprintf(out, "%s%s%s%s", cellColors[j](), cell, ui.ColorReset(), padRight("", widths[j]-len(cell)+3))
		}
		fmt.Fprintln(out, statusLabel(res.Err))
	}
}

func statusLabel(err error) string {
	if err != nil {
		return fmt.Sprintf("%sFailure (%v)%s", ui.ColorRed(), err, ui.ColorReset())
	}
	return fmt.Sprintf("%sSuccess%s", ui.ColorGreen(), ui.ColorReset())
}

func minLabel(size int) string {
	if size == math.MaxInt {
		return "inf"
	}
	return strconv.Itoa(size)
}

func planLabel(res orchestration.RunResult) string {
	if res.Decision.ChunkSize > 0 {
		return fmt.Sprintf("%s/%d", res.Decision.Mode, res.Decision.ChunkSize)
	}
	return res.Decision.Mode.String()
}

func durationLabel(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// padRight returns s followed by length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// PresentResult displays the winning run.
func (CLIResultPresenter) PresentResult(result orchestration.RunResult, opts orchestration.PresentationOptions, out io.Writer) {
	DisplayResult(result, opts, out)
}

// FormatDuration formats a duration with the CLI's duration rules.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	return format.FormatExecutionDuration(d)
}

// HandleError prints err and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleRunError(err, duration, out, CLIColorProvider{})
}

// CLIColorProvider implements apperrors.ColorProvider with the current theme.
type CLIColorProvider struct{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }

// DisplayMemoryStats shows what the runtime allocated during a run.
func DisplayMemoryStats(delta metrics.MemoryDelta, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Peak heap:       %s\n", format.FormatBytes(delta.PeakHeap))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(delta.Allocated))
	fmt.Fprintf(out, "  Heap objects:    %s\n", format.FormatNumberString(strconv.FormatUint(delta.Objects, 10)))
	fmt.Fprintf(out, "  GC cycles:       %d\n", delta.GCCycles)
	fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(delta.PauseTotalNs)/1e6)
}

// QuietResultPresenter prints only the checksum of the winning run to Out
// and nothing else, whatever writer the orchestrator passes in.
type QuietResultPresenter struct {
	Out io.Writer
}

var _ orchestration.ResultPresenter = QuietResultPresenter{}

// PresentComparisonTable prints nothing.
func (QuietResultPresenter) PresentComparisonTable([]orchestration.RunResult, io.Writer) {}

// PresentResult prints the checksum.
func (p QuietResultPresenter) PresentResult(result orchestration.RunResult, _ orchestration.PresentationOptions, _ io.Writer) {
	DisplayQuietResult(p.Out, result)
}
