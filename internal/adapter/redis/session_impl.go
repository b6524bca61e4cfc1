package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/user/linkedin-connector/internal/entity"
	"github.com/user/linkedin-connector/internal/repository"
	"github.com/user/linkedin-connector/pkg/utils"
)

const sessionKeyPrefix = "session:"

// SessionRepoImpl provides a concrete implementation for the SessionRepository interface using Redis.
// The cookie array is stored as the same JSON document the file backend writes.
type SessionRepoImpl struct {
	client *redis.Client
	key    string
}

// NewSessionRepo creates a new instance of SessionRepoImpl scoped to one account.
func NewSessionRepo(client *redis.Client, account string) *SessionRepoImpl {
	return &SessionRepoImpl{client: client, key: GenerateKey(account)}
}

// GenerateKey creates a consistent Redis key for an account by hashing it.
func GenerateKey(account string) string {
	return fmt.Sprintf("%s%s", sessionKeyPrefix, utils.HashKey(account))
}

// Load fetches the stored session. A missing key yields repository.ErrNoSession.
func (r *SessionRepoImpl) Load(ctx context.Context) (entity.Session, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if session.Empty() {
		return nil, repository.ErrNoSession
	}
	return session, nil
}

// Save overwrites the stored session. The key has no expiry; staleness is
// discovered by the authentication probe.
func (r *SessionRepoImpl) Save(ctx context.Context, session entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, 0).Err()
}
