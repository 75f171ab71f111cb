package calibration

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agbru/parfor/internal/config"
	apperrors "github.com/agbru/parfor/internal/errors"
	"github.com/agbru/parfor/internal/orchestration"
	"github.com/agbru/parfor/internal/parallel"
	"github.com/agbru/parfor/internal/workload"
)

// Rounds is the number of times every candidate is measured; the fastest
// round counts.
const Rounds = 3

type calibrationResult struct {
	MinPartitionSize int
	Decision         parallel.Decision
	Duration         time.Duration
	Err              error
}

// RunCalibration measures w over [cfg.From, cfg.From+cfg.N) with every
// candidate from GenerateMinPartitionSizes, prints a summary table, and
// saves the fastest size to the calibration profile. It returns the process
// exit code.
func RunCalibration(ctx context.Context, out io.Writer, loop *parallel.Loop, w workload.Workload, cfg config.AppConfig, reporter orchestration.ProgressReporter, colors apperrors.ColorProvider) int {
	start := time.Now()
	parallelism := loop.Options().Parallelism
	sizes := GenerateMinPartitionSizes(parallelism)

	fmt.Fprintf(out, "--- Calibration Mode ---\n")
	fmt.Fprintf(out, "Measuring %d minimum partition sizes on %q (n=%d, %d workers, %d rounds).\n",
		len(sizes), w.Name(), cfg.N, parallelism, Rounds)

	strategies := make([]orchestration.Strategy, len(sizes))
	for i, size := range sizes {
		strategies[i] = orchestration.Strategy{Name: candidateLabel(size), MinPartitionSize: size}
	}

	results := make([]calibrationResult, len(sizes))
	var checksum uint64
	haveChecksum := false
	for round := 0; round < Rounds; round++ {
		runs := orchestration.ExecuteRuns(ctx, loop, w, strategies, cfg, reporter, out)
		for i, run := range runs {
			res := &results[i]
			res.MinPartitionSize = sizes[i]
			res.Decision = run.Decision
			if run.Err != nil {
				if res.Err == nil {
					res.Err = run.Err
				}
				continue
			}
			if !haveChecksum {
				checksum, haveChecksum = run.Checksum, true
			} else if run.Checksum != checksum {
				fmt.Fprintf(out, "%sCalibration aborted: %v%s\n", colors.Red(), apperrors.MismatchError{
					Expected: checksum, Got: run.Checksum,
					Reference: strategies[0].Name, Offender: strategies[i].Name,
				}, colors.Reset())
				return apperrors.ExitErrorMismatch
			}
			if res.Duration == 0 || run.Duration < res.Duration {
				res.Duration = run.Duration
			}
		}
		if err := ctx.Err(); err != nil {
			return apperrors.HandleRunError(apperrors.CanceledError{Cause: err}, time.Since(start), out, colors)
		}
	}

	best, ok := fastest(results)
	printCalibrationResults(out, results, best.MinPartitionSize)
	if !ok {
		fmt.Fprintf(out, "\n%sCalibration failed: no candidate completed.%s\n", colors.Red(), colors.Reset())
		return apperrors.HandleRunError(firstError(results), time.Since(start), out, colors)
	}

	profile := NewProfile()
	profile.Parallelism = parallelism
	profile.Workload = w.Name()
	profile.CalibrationN = cfg.N
	profile.CalibrationTime = time.Since(start).Round(time.Millisecond).String()
	profile.OptimalMinPartitionSize = best.MinPartitionSize

	fmt.Fprintf(out, "\nFastest: %s%s%s\n", colors.Yellow(), candidateLabel(best.MinPartitionSize), colors.Reset())
	path := ResolveProfilePath(cfg.CalibrationProfile)
	if err := profile.SaveProfile(path); err != nil {
		fmt.Fprintf(out, "%sCould not save calibration profile: %v%s\n", colors.Red(), err, colors.Reset())
		return apperrors.ExitErrorGeneric
	}
	fmt.Fprintf(out, "Profile saved to %s\n", path)
	return apperrors.ExitSuccess
}

func fastest(results []calibrationResult) (calibrationResult, bool) {
	var best calibrationResult
	found := false
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if !found || r.Duration < best.Duration {
			best, found = r, true
		}
	}
	return best, found
}

func firstError(results []calibrationResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

func candidateLabel(size int) string {
	if size == SequentialCandidate {
		return "sequential"
	}
	return fmt.Sprintf("min=%d", size)
}
