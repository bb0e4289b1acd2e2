package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/buckleypaul/lfz/internal/ui"
)

// Plain emits one line per state transition, suitable for pipes and CI
// logs. Intermediate compile-step counters are dropped so a long build
// does not flood the log.
type Plain struct {
	mu    sync.Mutex
	w     io.Writer
	names []string
	seen  []State
}

func NewPlain(w io.Writer, names []string) *Plain {
	return &Plain{w: w, names: names, seen: make([]State, len(names))}
}

func (p *Plain) Update(index int, state State, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.names) {
		return
	}
	if p.seen[index].Terminal() || state <= p.seen[index] {
		return
	}
	p.seen[index] = state
	switch state {
	case StateStarting:
		fmt.Fprintf(p.w, "%s: configuring\n", p.names[index])
	case StateRunning:
		fmt.Fprintf(p.w, "%s: building\n", p.names[index])
	}
}

func (p *Plain) Finish(index int, success bool, artifact string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.names) {
		return
	}
	if p.seen[index].Terminal() {
		return
	}
	if success {
		p.seen[index] = StateSuccess
		detail := ui.FormatDuration(duration)
		if artifact != "" {
			detail = artifact + " (" + detail + ")"
		}
		fmt.Fprintf(p.w, "%s: ok %s\n", p.names[index], detail)
	} else {
		p.seen[index] = StateFailed
		fmt.Fprintf(p.w, "%s: failed (%s)\n", p.names[index], ui.FormatDuration(duration))
	}
}

func (p *Plain) Close() {}
