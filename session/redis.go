package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	sidKey         = "sid"
	redisKeyPrefix = "eaisdo:session:"
)

// RedisStorage keeps the token in Redis under a random session id; the
// browser cookie carries only that id.
type RedisStorage struct {
	rdb   redis.Cmdable
	store sessions.Store
	r     *http.Request
	w     http.ResponseWriter
	ttl   time.Duration
}

func NewRedisStorage(rdb redis.Cmdable, store sessions.Store, w http.ResponseWriter, r *http.Request, ttl time.Duration) *RedisStorage {
	return &RedisStorage{rdb: rdb, store: store, r: r, w: w, ttl: ttl}
}

func redisKey(sid string) string {
	return redisKeyPrefix + sid
}

func (s *RedisStorage) sid() (string, *sessions.Session, error) {
	sess, err := s.store.Get(s.r, CookieName)
	if sess == nil {
		return "", nil, fmt.Errorf("session cookie: %w", err)
	}
	sid, _ := sess.Values[sidKey].(string)
	return sid, sess, nil
}

func (s *RedisStorage) Token(ctx context.Context) (string, error) {
	sess, err := peek(s.store, s.r)
	if err != nil {
		return "", err
	}
	sid, _ := sess.Values[sidKey].(string)
	if sid == "" {
		return "", nil
	}
	token, err := s.rdb.Get(ctx, redisKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get session: %w", err)
	}
	return token, nil
}

func (s *RedisStorage) SetToken(ctx context.Context, token string) error {
	sid, sess, err := s.sid()
	if err != nil {
		return err
	}
	if sid == "" {
		sid = uuid.NewString()
		sess.Values[sidKey] = sid
		if err := sess.Save(s.r, s.w); err != nil {
			return err
		}
	}
	if err := s.rdb.Set(ctx, redisKey(sid), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStorage) RemoveToken(ctx context.Context) error {
	sid, sess, err := s.sid()
	if err != nil {
		return err
	}
	if sid == "" {
		return nil
	}
	delete(sess.Values, sidKey)
	saveErr := sess.Save(s.r, s.w)
	if err := s.rdb.Del(ctx, redisKey(sid)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return saveErr
}
