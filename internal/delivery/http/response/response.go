package response

import "time"

// RunStatusResponse is a DTO for the live run progress, mirroring usecase.ProgressSnapshot
type RunStatusResponse struct {
	RunID            string    `json:"run_id"`
	State            string    `json:"state"` // "init", "authenticating", "browsing", ..., "terminated"
	Page             int       `json:"page"`
	ProfilesObserved int       `json:"profiles_observed"`
	ActionsCompleted int       `json:"actions_completed"`
	Failures         int       `json:"failures"`
	Termination      string    `json:"termination,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Done             bool      `json:"done"`
}
