package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lock is a Redis SETNX-based distributed mutex guaranteeing a single
// writer per run (spec §5 shared-resource policy), grounded on
// db/repository/redis.go's AcquireLock/ReleaseLock.
type Lock struct {
	rdb   *redis.Client
	token string
}

// singleWriterLockKey namespaces run locks from any other use of the
// same Redis instance.
func singleWriterLockKey(runUUID string) string {
	return fmt.Sprintf("minerva:lock:run:%s", runUUID)
}

// Acquire attempts to take the lock for runUUID for ttl, returning
// ok=false if another worker already holds it.
func Acquire(ctx context.Context, rdb *redis.Client, runUUID string, ttl time.Duration) (*Lock, bool, error) {
	token := uuid.NewString()
	ok, err := rdb.SetNX(ctx, singleWriterLockKey(runUUID), token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return &Lock{rdb: rdb, token: token}, true, nil
}

// Release drops the lock, identified by key, only if this Lock's token
// still owns it — a compare-and-delete so a lock that already expired
// and was re-acquired by someone else is never stolen back.
func (l *Lock) Release(ctx context.Context, runUUID string) error {
	script := redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		end
		return 0
	`)
	return script.Run(ctx, l.rdb, []string{singleWriterLockKey(runUUID)}, l.token).Err()
}
