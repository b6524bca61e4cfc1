package usecase

import (
	"sync"
	"time"

	"github.com/user/linkedin-connector/internal/entity"
)

// Driver states, in the order a normal run moves through them.
const (
	StateInit           = "init"
	StateAuthenticating = "authenticating"
	StateBrowsing       = "browsing"
	StateEvaluating     = "evaluating"
	StateActing         = "acting"
	StatePaginating     = "paginating"
	StateTerminated     = "terminated"
)

// ProgressSnapshot is a point-in-time copy of the run progress.
type ProgressSnapshot struct {
	RunID            string    `json:"run_id"`
	State            string    `json:"state"`
	Page             int       `json:"page"`
	ProfilesObserved int       `json:"profiles_observed"`
	ActionsCompleted int       `json:"actions_completed"`
	Failures         int       `json:"failures"`
	Termination      string    `json:"termination,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Progress is written by the driver and read concurrently by the status server.
type Progress struct {
	mu   sync.RWMutex
	snap ProgressSnapshot
}

func NewProgress(runID string) *Progress {
	return &Progress{snap: ProgressSnapshot{RunID: runID, State: StateInit}}
}

func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

func (p *Progress) update(state string, page int, res entity.RunResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.State = state
	p.snap.Page = page
	p.snap.ProfilesObserved = res.ProfilesObserved
	p.snap.ActionsCompleted = res.ActionsCompleted
	p.snap.Failures = res.Failures
	p.snap.Termination = string(res.Termination)
	p.snap.StartedAt = res.StartedAt
	p.snap.UpdatedAt = time.Now()
}

func (p *Progress) setState(state string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.State = state
	p.snap.UpdatedAt = time.Now()
}
