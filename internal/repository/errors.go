package repository

import "errors"

var (
	// ErrElementNotFound is returned when an awaited element never appeared.
	ErrElementNotFound = errors.New("element not found")
	// ErrNavigationTimeout is returned when an expected navigation did not happen in time.
	ErrNavigationTimeout = errors.New("navigation timed out")
	// ErrNoNextPage is returned when the pagination control is absent. It cannot
	// tell the last page apart from a transient UI failure.
	ErrNoNextPage = errors.New("next page control not found")
	// ErrNoSession is returned by session repositories when nothing is stored.
	ErrNoSession = errors.New("no persisted session")
)
