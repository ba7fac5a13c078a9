// Package auth holds the session-keyed credential store. Each browser
// session maps to one set of Google credentials in Redis, so credentials
// are scoped per request instead of living in a process-global.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

// ErrSessionNotFound means the session expired or never existed.
var ErrSessionNotFound = errors.New("session not found")

// SessionTTL bounds how long a browser session stays valid without a new
// login. Refreshing access tokens rewrites the session and resets the TTL.
const SessionTTL = 7 * 24 * time.Hour

// Session binds a browser session to a user and their Google credentials.
type Session struct {
	UserID uint          `json:"user_id"`
	Email  string        `json:"email"`
	Token  *oauth2.Token `json:"token"`
}

// SessionStore keeps sessions in Redis under session:<id>.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: SessionTTL}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create stores the session under a fresh random ID and returns the ID.
func (s *SessionStore) Create(ctx context.Context, sess *Session) (string, error) {
	id := uuid.NewString()
	if err := s.Put(ctx, id, sess); err != nil {
		return "", err
	}
	return id, nil
}

// Put writes (or rewrites) a session and resets its TTL.
func (s *SessionStore) Put(ctx context.Context, id string, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Get loads a session by ID.
func (s *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
