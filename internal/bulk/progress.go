package bulk

import (
	"math"
	"sync"

	"github.com/planweave/planweave/internal/domain"
)

// Progress is the mutable progress state owned by one operation
// instance. Counters only increase; concurrent operations each own
// their Progress and never interfere.
type Progress struct {
	mu        sync.Mutex
	state     domain.OperationState
	total     int
	committed int
	failed    int
}

func newProgress(total int) *Progress {
	return &Progress{state: domain.OpPending, total: total}
}

func (p *Progress) start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = domain.OpRunning
}

func (p *Progress) commit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.committed++
}

func (p *Progress) fail() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed++
}

func (p *Progress) finalize(state domain.OperationState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

// Snapshot returns a point-in-time view. The fraction is derived from
// attempted units over total and reports exactly 1.0 only once the
// operation reached a terminal state.
func (p *Progress) Snapshot() domain.ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := domain.ProgressSnapshot{
		State:     p.state,
		Total:     p.total,
		Committed: p.committed,
		Failed:    p.failed,
	}
	switch {
	case p.state.IsTerminal():
		s.Fraction = 1.0
	case p.total == 0:
		s.Fraction = 0
	default:
		s.Fraction = float64(p.committed+p.failed) / float64(p.total)
		if s.Fraction >= 1.0 {
			s.Fraction = math.Nextafter(1.0, 0)
		}
	}
	return s
}
