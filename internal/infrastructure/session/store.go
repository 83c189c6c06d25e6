package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Flash kinds, mirrored by the view locals.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Manager is the contract the HTTP layer uses to work with browser sessions.
// A session is keyed by an opaque id carried in a cookie; at most one user is
// bound to it. All operations are safe on ids that no longer exist.
type Manager interface {
	// NewID mints a fresh opaque session id.
	NewID() string
	// SetUser binds a user to the session and refreshes its TTL.
	SetUser(ctx context.Context, sid, userID string) error
	// UserID resolves the session to a user id, or "" when the session is
	// absent, expired, or anonymous.
	UserID(ctx context.Context, sid string) (string, error)
	// Destroy removes the session. Destroying twice is not an error.
	Destroy(ctx context.Context, sid string) error

	AddFlash(ctx context.Context, sid, kind, message string) error
	// PopFlashes returns and clears pending flash messages.
	PopFlashes(ctx context.Context, sid string) (success, errs []string, err error)

	// SetRedirectURL remembers where to send the user after login.
	SetRedirectURL(ctx context.Context, sid, url string) error
	PopRedirectURL(ctx context.Context, sid string) (string, error)
}

// Store is the Redis-backed session manager. Sessions are hashes under
// session:<sid>; flash messages are short-lived lists next to the hash.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func sessionKey(sid string) string { return "session:" + sid }

func flashKey(sid, kind string) string { return "session:" + sid + ":flash:" + kind }

func (s *Store) NewID() string { return uuid.NewString() }

func (s *Store) SetUser(ctx context.Context, sid, userID string) error {
	key := sessionKey(sid)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    userID,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) UserID(ctx context.Context, sid string) (string, error) {
	if sid == "" {
		return "", nil
	}
	uid, err := s.rdb.HGet(ctx, sessionKey(sid), "user_id").Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return uid, nil
}

func (s *Store) Destroy(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.rdb.Del(ctx,
		sessionKey(sid),
		flashKey(sid, FlashSuccess),
		flashKey(sid, FlashError),
	).Err()
}

func (s *Store) AddFlash(ctx context.Context, sid, kind, message string) error {
	key := flashKey(sid, kind)
	pipe := s.rdb.Pipeline()
	pipe.RPush(ctx, key, message)
	// Flashes should not outlive the session but must survive one redirect.
	pipe.Expire(ctx, key, 10*time.Minute)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) PopFlashes(ctx context.Context, sid string) ([]string, []string, error) {
	if sid == "" {
		return nil, nil, nil
	}
	success, err := s.popList(ctx, flashKey(sid, FlashSuccess))
	if err != nil {
		return nil, nil, err
	}
	errs, err := s.popList(ctx, flashKey(sid, FlashError))
	if err != nil {
		return success, nil, err
	}
	return success, errs, nil
}

func (s *Store) popList(ctx context.Context, key string) ([]string, error) {
	pipe := s.rdb.TxPipeline()
	lrange := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}
	return lrange.Val(), nil
}

func (s *Store) SetRedirectURL(ctx context.Context, sid, url string) error {
	key := sessionKey(sid)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, "redirect_url", url)
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) PopRedirectURL(ctx context.Context, sid string) (string, error) {
	key := sessionKey(sid)
	url, err := s.rdb.HGet(ctx, key, "redirect_url").Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	_ = s.rdb.HDel(ctx, key, "redirect_url").Err()
	return url, nil
}

var _ Manager = (*Store)(nil)
