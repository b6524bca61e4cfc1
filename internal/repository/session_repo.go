package repository

import (
	"context"

	"github.com/user/linkedin-connector/internal/entity"
)

// SessionRepository persists the authentication cookies between runs.
type SessionRepository interface {
	// Load returns the stored session, or ErrNoSession when none is stored or it is empty.
	Load(ctx context.Context) (entity.Session, error)
	// Save overwrites the stored session.
	Save(ctx context.Context, session entity.Session) error
}
