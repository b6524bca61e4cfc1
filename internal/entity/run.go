package entity

import "time"

// Termination is the reason the interaction loop stopped.
type Termination string

const (
	TerminationQuotaReached      Termination = "quota_reached"
	TerminationPageLimitReached  Termination = "page_limit_reached"
	TerminationNoNextPage        Termination = "no_next_page"
	TerminationPaginationFailed  Termination = "pagination_failed"
	TerminationInvalidCeiling    Termination = "invalid_ceiling"
	TerminationSearchUnavailable Termination = "search_unavailable"
	TerminationAborted           Termination = "aborted"
)

// RunResult holds the counters of one process invocation.
// ActionsCompleted never exceeds ProfilesObserved.
type RunResult struct {
	RunID            string
	ProfilesObserved int
	ActionsCompleted int
	PagesVisited     int
	Failures         int
	Termination      Termination
	StartedAt        time.Time
	FinishedAt       time.Time
}

// RunRecord mirrors the `runs` PostgreSQL table schema.
type RunRecord struct {
	ID               string
	SearchURL        string
	ProfilesObserved int
	ActionsCompleted int
	PagesVisited     int
	Failures         int
	Termination      string
	StartedAt        time.Time
	FinishedAt       time.Time
}
