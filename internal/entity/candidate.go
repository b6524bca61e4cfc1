package entity

import "strings"

// ConnectLabel is the action control text that marks a candidate as eligible.
const ConnectLabel = "Connect"

// Candidate is one profile entry found on a results page.
// It only lives for the duration of one evaluation.
type Candidate struct {
	Index      int // position on the page, zero based
	Page       int
	Subtitle   string
	FullName   string
	FirstName  string
	ProfileURL string
	// ActionLabel is the trimmed text of the action control, empty when the
	// control never appeared.
	ActionLabel string
}

// Eligible reports whether the candidate currently exposes a connect affordance.
func (c Candidate) Eligible() bool {
	return strings.Contains(c.ActionLabel, ConnectLabel)
}

// FirstNameOf returns the first whitespace separated token of a display name.
func FirstNameOf(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
