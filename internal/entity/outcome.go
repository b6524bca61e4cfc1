package entity

import "time"

// OutcomeStatus is the result class of one candidate evaluation.
type OutcomeStatus string

const (
	OutcomeConnected OutcomeStatus = "connected"
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeFailed    OutcomeStatus = "failed"
)

// Reason qualifies a skipped or failed outcome.
type Reason string

const (
	SkipNotEligible     Reason = "not_eligible"
	SkipNoActionControl Reason = "no_action_control"

	FailElementNotFound Reason = "element_not_found"
	FailTimeout         Reason = "timeout"
	FailUnknown         Reason = "error"
)

// Outcome is the typed result of evaluating (and possibly acting on) a candidate.
type Outcome struct {
	Status OutcomeStatus
	Reason Reason
	Err    error
}

func Connected() Outcome                      { return Outcome{Status: OutcomeConnected} }
func Skipped(reason Reason) Outcome           { return Outcome{Status: OutcomeSkipped, Reason: reason} }
func Failed(reason Reason, err error) Outcome { return Outcome{Status: OutcomeFailed, Reason: reason, Err: err} }

// ConnectionAttempt mirrors the `connection_attempts` PostgreSQL table schema.
type ConnectionAttempt struct {
	ID          int64
	RunID       string
	Page        int
	Position    int
	Subtitle    string
	FirstName   string
	ProfileURL  string
	Status      OutcomeStatus
	Reason      string
	Error       string
	AttemptedAt time.Time
}
