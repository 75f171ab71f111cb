// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult], [FormatPlan].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agbru/parfor/internal/format"
	"github.com/agbru/parfor/internal/orchestration"
	"github.com/agbru/parfor/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path the report is saved to (empty for none).
	OutputFile string
	Quiet      bool
	Verbose    bool
}

// DisplayResult prints the checksum and timing of the winning run. Details
// adds the plan; Verbose adds per-partition figures.
func DisplayResult(result orchestration.RunResult, opts orchestration.PresentationOptions, out io.Writer) {
	fmt.Fprintf(out, "\n%sResult%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(out, "  Workload:  %s%s%s over [%s, %s)\n",
		ui.ColorCyan(), opts.Workload, ui.ColorReset(),
		format.FormatCount(opts.From), format.FormatCount(opts.From+opts.N))
	fmt.Fprintf(out, "  Strategy:  %s\n", result.Strategy.Name)
	fmt.Fprintf(out, "  Time:      %s%s%s\n", ui.ColorGreen(), format.FormatExecutionDuration(result.Duration), ui.ColorReset())
	fmt.Fprintf(out, "  Checksum:  %s%d%s\n", ui.ColorYellow(), result.Checksum, ui.ColorReset())

	if !opts.Details && !opts.Verbose {
		return
	}
	fmt.Fprintf(out, "\n%sPlan%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(out, "  Mode:              %s\n", result.Decision.Mode)
	fmt.Fprintf(out, "  Min partition:     %s\n", minLabel(result.Strategy.MinPartitionSize))
	if result.Decision.ChunkSize > 0 {
		parts := partitionCount(opts.N, result.Decision.ChunkSize)
		fmt.Fprintf(out, "  Chunk size:        %s\n", format.FormatCount(result.Decision.ChunkSize))
		fmt.Fprintf(out, "  Partitions:        %d\n", parts)
		if opts.Verbose && result.Duration > 0 {
			perSec := float64(opts.N) / result.Duration.Seconds()
			fmt.Fprintf(out, "  Indices/second:    %s\n", format.FormatNumberString(strconv.FormatFloat(perSec, 'f', 0, 64)))
		}
	}
}

func partitionCount(length, chunk int) int {
	if length <= 0 || chunk <= 0 {
		return 0
	}
	return (length-1)/chunk + 1
}

// FormatQuietResult returns the single line printed in quiet mode.
func FormatQuietResult(result orchestration.RunResult) string {
	return strconv.FormatUint(result.Checksum, 10)
}

// DisplayQuietResult prints only the checksum, for scripts.
func DisplayQuietResult(out io.Writer, result orchestration.RunResult) {
	fmt.Fprintln(out, FormatQuietResult(result))
}

// WriteResultToFile writes a report of result to config.OutputFile, creating
// parent directories as needed. It does nothing when no file is configured.
func WriteResultToFile(result orchestration.RunResult, opts orchestration.PresentationOptions, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# parfor run report\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Workload: %s\n", opts.Workload)
	fmt.Fprintf(file, "# Range: [%d, %d)\n", opts.From, opts.From+opts.N)
	fmt.Fprintf(file, "# Strategy: %s\n", result.Strategy.Name)
	fmt.Fprintf(file, "# Min partition: %s\n", minLabel(result.Strategy.MinPartitionSize))
	fmt.Fprintf(file, "# Mode: %s\n", result.Decision.Mode)
	fmt.Fprintf(file, "# Chunk size: %d\n", result.Decision.ChunkSize)
	fmt.Fprintf(file, "# Duration: %s\n", result.Duration)
	fmt.Fprintf(file, "\n")

	if _, err := fmt.Fprintf(file, "checksum=%d\n", result.Checksum); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// DisplayResultWithConfig prints result according to config and saves the
// report when an output file is configured.
func DisplayResultWithConfig(out io.Writer, result orchestration.RunResult, opts orchestration.PresentationOptions, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, result)
	} else {
		DisplayResult(result, opts, out)
	}

	if config.OutputFile == "" {
		return nil
	}
	if err := WriteResultToFile(result, opts, config); err != nil {
		return err
	}
	if !config.Quiet {
		fmt.Fprintf(out, "\n%sReport saved to: %s%s%s\n",
			ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
	}
	return nil
}
