package exact

import (
	"fmt"
	"io"
)

type Tracer interface {
	Trace(b Batch)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ Batch) {
}

// LoggingTracer prints every batch with the sunflowers that were blocked.
type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(b Batch) {
	fmt.Fprintf(t.Writer, "---\nBatch #%d: %d active, %d sunflowers (solve %s)\n", b.Number, len(b.Active), len(b.Sunflowers), b.SolveTime)
	for _, sf := range b.Sunflowers {
		fmt.Fprintf(t.Writer, "- %s\n", sf)
	}
}
