package worker

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ProcessTable tracks the workers an installer has spawned so they can be torn down
// with it. Each installer owns its own table.
type ProcessTable struct {
	mu    sync.Mutex
	procs map[*Process]struct{}
}

func NewProcessTable() *ProcessTable {
	return &ProcessTable{
		procs: make(map[*Process]struct{}),
	}
}

func (t *ProcessTable) Add(p *Process) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.procs[p] = struct{}{}
}

func (t *ProcessTable) Remove(p *Process) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.procs, p)
}

func (t *ProcessTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.procs)
}

// KillAll kills every tracked worker that is still alive and empties the table. It
// returns how many were killed.
func (t *ProcessTable) KillAll() int {
	t.mu.Lock()
	procs := make([]*Process, 0, len(t.procs))
	for p := range t.procs {
		procs = append(procs, p)
	}
	t.procs = make(map[*Process]struct{})
	t.mu.Unlock()

	killed := 0
	for _, p := range procs {
		err := p.KillTree()
		switch {
		case err == nil:
			killed++
		case errors.Is(err, ErrProcessExited):
		default:
			log.Error().Err(err).Msgf("Error killing worker %d", p.Pid())
		}
		_ = p.Close()
	}
	return killed
}
