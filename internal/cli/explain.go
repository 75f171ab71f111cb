package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/parfor/internal/format"
	"github.com/agbru/parfor/internal/parallel"
	"github.com/agbru/parfor/internal/ui"
)

// maxListedPartitions bounds how many partitions FormatPlan lists before
// summarizing the rest.
const maxListedPartitions = 8

// FormatPlan explains how a loop over [from, from+length) with the given
// minimum partition size is planned for parallelism workers.
func FormatPlan(from, length, minPartitionSize, parallelism int) string {
	var b strings.Builder
	decision := parallel.Plan(length, minPartitionSize, parallelism)

	naive := 0
	if parallelism > 0 {
		naive = length / parallelism
	}
	fmt.Fprintf(&b, "Range:          [%s, %s) (%s indices)\n",
		format.FormatCount(from), format.FormatCount(from+length), format.FormatCount(length))
	fmt.Fprintf(&b, "Parallelism:    %d\n", parallelism)
	fmt.Fprintf(&b, "Min partition:  %s\n", minLabel(minPartitionSize))
	fmt.Fprintf(&b, "Naive chunk:    %s / %d = %s\n", format.FormatCount(length), parallelism, format.FormatCount(naive))

	switch {
	case length <= 0:
		fmt.Fprintf(&b, "Decision:       sequential (empty range)\n")
		return b.String()
	case parallelism <= 1:
		fmt.Fprintf(&b, "Decision:       sequential (single worker)\n")
		return b.String()
	case decision.Mode == parallel.Sequential:
		fmt.Fprintf(&b, "Decision:       sequential (min %s > naive %s)\n", minLabel(minPartitionSize), format.FormatCount(naive))
		return b.String()
	}

	fmt.Fprintf(&b, "Decision:       parallel (min %s <= naive %s)\n", minLabel(minPartitionSize), format.FormatCount(naive))
	parts := parallel.Split(from, from+length, decision.ChunkSize)
	fmt.Fprintf(&b, "Partitions:     %d\n", len(parts))
	for i, p := range parts {
		if i == maxListedPartitions {
			fmt.Fprintf(&b, "  ... %d more\n", len(parts)-i)
			break
		}
		fmt.Fprintf(&b, "  #%-3d [%d, %d) %s\n", i, p.Start, p.End, format.FormatCount(p.Len()))
	}
	return b.String()
}

// DisplayPlan prints FormatPlan under a heading.
func DisplayPlan(out io.Writer, from, length, minPartitionSize, parallelism int) {
	fmt.Fprintf(out, "%s--- Loop Plan ---%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprint(out, FormatPlan(from, length, minPartitionSize, parallelism))
}
