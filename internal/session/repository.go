package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "okr:session:" // Key prefix for session data: okr:session:{id}
	userSetPrefix    = "okr:user:"    // Set of session IDs for a user: okr:user:{email}
)

// Repository handles Redis operations for sessions
type Repository struct {
	client *redis.Client
	now    func() time.Time
}

// NewRepository creates a new Repository
func NewRepository(client *redis.Client) *Repository {
	return &Repository{
		client: client,
		now:    time.Now,
	}
}

// Create stores a new session, assigning its ID. The key expires with the
// session.
func (r *Repository) Create(ctx context.Context, s *Session) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now()
	}

	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return ErrTokenExpired
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// The user set must outlive every session in it, so its expiry only
	// ever grows.
	extendSet := false
	if s.Email != "" {
		cur, err := r.client.TTL(ctx, userSetKey(s.Email)).Result()
		if err != nil {
			return fmt.Errorf("failed to read user session ttl: %w", err)
		}
		extendSet = cur < ttl
	}

	// Use pipeline for atomic operations
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(s.ID), data, ttl)
	if s.Email != "" {
		setKey := userSetKey(s.Email)
		pipe.SAdd(ctx, setKey, s.ID)
		if extendSet {
			pipe.Expire(ctx, setKey, ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get retrieves a session by its ID
func (r *Repository) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	s, err := r.Get(ctx, id)
	if err == ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	if s.Email != "" {
		pipe.SRem(ctx, userSetKey(s.Email), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteAllForUser ends every session belonging to email.
func (r *Repository) DeleteAllForUser(ctx context.Context, email string) (int, error) {
	setKey := userSetKey(email)
	ids, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list user sessions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, setKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return len(ids), nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// userSetKey folds case so a reset link and a token claim name the same user.
func userSetKey(email string) string {
	return userSetPrefix + strings.ToLower(strings.TrimSpace(email))
}
