// Package progress multiplexes live build status for several targets onto
// one terminal. Interactive terminals get an in-place updating board, pipes
// get plain append-only lines, and quiet mode swallows everything.
package progress

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// State describes where a target is in its build lifecycle. States only
// move forward: Pending -> Starting -> Running -> Success or Failed.
type State int

const (
	StatePending State = iota
	StateStarting
	StateRunning
	StateSuccess
	StateFailed
)

// Terminal reports whether a state is final.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// Reporter receives status updates from concurrently running builds.
// Implementations must be safe for concurrent use; index identifies the
// target by its position in the list given at construction.
type Reporter interface {
	// Update moves a target to a non-terminal state with a short progress
	// message like "[123/456]" or "linking". Updates that would move a
	// target backward are ignored.
	Update(index int, state State, msg string)

	// Finish marks a target done. artifact is the collected firmware file
	// name on success, empty otherwise.
	Finish(index int, success bool, artifact string, duration time.Duration)

	// Close flushes the display and releases any terminal state. No calls
	// may follow Close.
	Close()
}

// NewReporter picks the reporter appropriate for the output: a live board
// when w is an interactive terminal, plain lines when piped, and a no-op
// in quiet mode.
func NewReporter(w io.Writer, quiet bool, names []string) Reporter {
	if quiet {
		return nopReporter{}
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return NewBoard(w, names)
	}
	return NewPlain(w, names)
}

type nopReporter struct{}

func (nopReporter) Update(int, State, string)               {}
func (nopReporter) Finish(int, bool, string, time.Duration) {}
func (nopReporter) Close()                                  {}
