// Package redisstore keeps the run lock that stops two extractions of the
// same business day from overlapping.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrLocked = errors.New("redisstore: run lock held elsewhere")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

// LockKey is the redis key guarding one business day.
func LockKey(businessDay time.Time) string {
	return "audios_sac:extract:lock:" + businessDay.Format("2006-01-02")
}

// Acquire takes the lock for key on behalf of owner. The returned release
// only deletes the key while it still belongs to owner.
func (s *Store) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (func(context.Context) error, error) {
	ok, err := s.rdb.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, key)
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, s.rdb, []string{key}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release %s: %w", key, err)
		}
		return nil
	}
	return release, nil
}
