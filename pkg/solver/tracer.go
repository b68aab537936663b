package solver

import (
	"fmt"
	"io"
	"time"
)

// Attempt describes one call to Solve.
type Attempt struct {
	Call    int
	Vars    int
	Clauses int
	Err     error
	Elapsed time.Duration
}

// Outcome returns "sat", "unsat" or "incomplete".
func (a Attempt) Outcome() string {
	switch a.Err {
	case nil:
		return "sat"
	case NotSatisfiable:
		return "unsat"
	default:
		return "incomplete"
	}
}

type Tracer interface {
	Trace(a Attempt)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ Attempt) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(a Attempt) {
	fmt.Fprintf(t.Writer, "---\nSolve #%d: %s\n", a.Call, a.Outcome())
	fmt.Fprintf(t.Writer, "Variables: %d\nBlocking clauses: %d\nElapsed: %s\n", a.Vars, a.Clauses, a.Elapsed)
}
