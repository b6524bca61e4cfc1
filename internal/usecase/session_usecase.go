package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/user/linkedin-connector/internal/repository"
)

// SessionKeeper moves cookies between the session repository and the browser.
// Neither operation fails: problems are logged and treated as "no session".
type SessionKeeper struct {
	repo   repository.SessionRepository
	logger *slog.Logger
}

func NewSessionKeeper(repo repository.SessionRepository, logger *slog.Logger) *SessionKeeper {
	return &SessionKeeper{repo: repo, logger: logger}
}

// Restore applies the persisted session to the page. It reports whether any
// cookies were applied.
func (k *SessionKeeper) Restore(ctx context.Context, page repository.Page) bool {
	session, err := k.repo.Load(ctx)
	if errors.Is(err, repository.ErrNoSession) {
		k.logger.Warn("No saved session found, skipping loading cookies")
		return false
	}
	if err != nil {
		k.logger.Error("Error loading cookies", "error", err)
		return false
	}
	if err := page.SetCookies(ctx, session); err != nil {
		k.logger.Error("Error applying cookies", "error", err)
		return false
	}
	k.logger.Info("Cookies loaded successfully", "count", len(session))
	return true
}

// Persist reads the page cookies and overwrites the stored session.
func (k *SessionKeeper) Persist(ctx context.Context, page repository.Page) {
	session, err := page.Cookies(ctx)
	if err != nil {
		k.logger.Error("Error reading cookies", "error", err)
		return
	}
	if err := k.repo.Save(ctx, session); err != nil {
		k.logger.Error("Error saving cookies", "error", err)
		return
	}
	k.logger.Info("Cookies saved", "count", len(session))
}
