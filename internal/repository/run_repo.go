package repository

import (
	"context"

	"github.com/user/linkedin-connector/internal/entity"
)

// RunRepository records run history for later inspection.
type RunRepository interface {
	// SaveAttempt stores the outcome of one candidate evaluation.
	SaveAttempt(ctx context.Context, attempt *entity.ConnectionAttempt) error
	// SaveRun creates or updates the summary row of a run.
	SaveRun(ctx context.Context, run *entity.RunRecord) error
}
