package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// Session is a refresh token record. The raw token is never stored.
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserAgent string    `json:"user_agent,omitempty"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore keeps refresh sessions in Redis keyed by token hash, with a
// per-user index set used for listing and mass revocation.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl, now: time.Now}
}

// Create issues a new refresh token for userID.
func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID, meta ClientMeta) (string, Session, error) {
	token, err := newRefreshToken()
	if err != nil {
		return "", Session{}, err
	}
	now := s.now().UTC()
	sess := Session{
		ID:        hashToken(token),
		UserID:    userID,
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return "", Session{}, err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.ID), data, s.ttl)
	pipe.SAdd(ctx, userIndexKey(userID), sess.ID)
	pipe.Expire(ctx, userIndexKey(userID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", Session{}, fmt.Errorf("store refresh session: %w", err)
	}
	return token, sess, nil
}

// Lookup resolves a raw refresh token.
func (s *SessionStore) Lookup(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, fmt.Errorf("%w: missing refresh token", shared.ErrUnauthorized)
	}
	raw, err := s.client.Get(ctx, sessionKey(hashToken(token))).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, fmt.Errorf("%w: refresh token revoked or expired", shared.ErrUnauthorized)
	}
	if err != nil {
		return Session{}, fmt.Errorf("load refresh session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, fmt.Errorf("decode refresh session: %w", err)
	}
	return sess, nil
}

// Consume atomically removes and returns the session behind token, so a
// refresh token can be exchanged at most once.
func (s *SessionStore) Consume(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, fmt.Errorf("%w: missing refresh token", shared.ErrUnauthorized)
	}
	raw, err := s.client.GetDel(ctx, sessionKey(hashToken(token))).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, fmt.Errorf("%w: refresh token revoked or expired", shared.ErrUnauthorized)
	}
	if err != nil {
		return Session{}, fmt.Errorf("consume refresh session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, fmt.Errorf("decode refresh session: %w", err)
	}
	if err := s.client.SRem(ctx, userIndexKey(sess.UserID), sess.ID).Err(); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Revoke deletes the session behind token. Unknown tokens are ignored.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	sess, err := s.Lookup(ctx, token)
	if errors.Is(err, shared.ErrUnauthorized) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.revoke(ctx, sess)
}

func (s *SessionStore) revoke(ctx context.Context, sess Session) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sess.ID))
	pipe.SRem(ctx, userIndexKey(sess.UserID), sess.ID)
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAll drops every session of userID and returns how many were live.
func (s *SessionStore) RevokeAll(ctx context.Context, userID uuid.UUID) (int, error) {
	ids, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("list refresh sessions: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	var removed int64
	if len(ids) > 0 {
		removed, err = s.client.Del(ctx, keys...).Result()
		if err != nil {
			return 0, fmt.Errorf("revoke refresh sessions: %w", err)
		}
	}
	if err := s.client.Del(ctx, userIndexKey(userID)).Err(); err != nil {
		return 0, err
	}
	return int(removed), nil
}

// List returns the live sessions of userID, newest first. Index entries
// whose session already expired are pruned.
func (s *SessionStore) List(ctx context.Context, userID uuid.UUID) ([]Session, error) {
	ids, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list refresh sessions: %w", err)
	}
	if len(ids) == 0 {
		return []Session{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load refresh sessions: %w", err)
	}
	sessions := make([]Session, 0, len(values))
	var stale []any
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var sess Session
		if err := json.Unmarshal([]byte(str), &sess); err != nil {
			stale = append(stale, ids[i])
			continue
		}
		sessions = append(sessions, sess)
	}
	if len(stale) > 0 {
		_ = s.client.SRem(ctx, userIndexKey(userID), stale...).Err()
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.After(sessions[j].CreatedAt) })
	return sessions, nil
}

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func sessionKey(id string) string {
	return "auth:refresh:" + id
}

func userIndexKey(userID uuid.UUID) string {
	return "auth:user_sessions:" + userID.String()
}
