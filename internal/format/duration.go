package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration renders a run duration: whole microseconds below a
// millisecond, whole milliseconds below a second, time.Duration.String above.
// Loop runs on small ranges routinely finish in microseconds, so the finer
// units keep them distinguishable in comparison tables.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.String()
	}
}
