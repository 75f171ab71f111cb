package parallel

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// TestErrorCollector_FirstErrorWins races partitions reporting failures,
// mixed with partitions reporting success (nil), and checks that exactly one
// real failure is kept. Repeated to give the race detector a chance.
func TestErrorCollector_FirstErrorWins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		partitions int
		failEvery  int
	}{
		{"every partition fails", 1000, 1},
		{"half the partitions fail", 1000, 2},
		{"one partition fails", 64, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for round := range 50 {
				var ec ErrorCollector
				var wg sync.WaitGroup
				start := make(chan struct{})
				for p := range tt.partitions {
					wg.Add(1)
					go func() {
						defer wg.Done()
						<-start
						if p%tt.failEvery == 0 {
							ec.SetError(fmt.Errorf("partition %d failed", p))
						} else {
							ec.SetError(nil)
						}
					}()
				}
				close(start)
				wg.Wait()

				err := ec.Err()
				if err == nil {
					t.Fatalf("round %d: no error recorded", round)
				}
				if !strings.HasPrefix(err.Error(), "partition ") {
					t.Fatalf("round %d: unexpected error %v", round, err)
				}
				if again := ec.Err(); again != err {
					t.Fatalf("round %d: Err() changed from %v to %v", round, err, again)
				}
			}
		})
	}
}

func TestErrorCollectorZeroValue(t *testing.T) {
	var ec ErrorCollector
	if ec.Err() != nil {
		t.Fatal("zero value should hold no error")
	}
	first := errors.New("first")
	ec.SetError(first)
	ec.SetError(errors.New("second"))
	if ec.Err() != first {
		t.Errorf("Err() = %v, want first", ec.Err())
	}
}

func TestPanicErrorUnwrap(t *testing.T) {
	cause := errors.New("wrapped cause")
	pe := newPanicError(cause)
	if !errors.Is(pe, cause) {
		t.Error("PanicError should unwrap an error panic value")
	}
	if newPanicError("text").Unwrap() != nil {
		t.Error("non-error panic value should unwrap to nil")
	}
}
