package utils

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockPrefix = "lock:"

// only the holder's token may extend or delete the key
var (
	refreshScript = redis.NewScript(`if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("PEXPIRE", KEYS[1], ARGV[2]) else return 0 end`)
	releaseScript = redis.NewScript(`if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`)
)

type lockEntry struct {
	token     string
	expiresAt time.Time
}

var (
	lockStore   = map[string]lockEntry{}
	lockStoreMu sync.Mutex
)

// Lock is a held named lock. Each holder carries its own token, so a holder whose lock expired
// cannot refresh or release a lock someone else took in the meantime.
type Lock struct {
	key    string
	token  string
	memory bool
}

// AcquireLock takes a short-lived named lock. Prefer Redis (SET NX) so several instances agree;
// fall back to process memory when redis is not configured or unreachable.
func AcquireLock(key string, ttl time.Duration) (*Lock, bool) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	l := &Lock{key: key, token: uuid.NewString()}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		ok, err := rc.SetNX(ctx, lockPrefix+key, l.token, ttl).Result()
		if err == nil {
			return l, ok
		}
		Sugar.Warnf("redis lock failed key=%s err=%v, using memory lock", key, err)
	}

	l.memory = true
	lockStoreMu.Lock()
	defer lockStoreMu.Unlock()
	if entry, ok := lockStore[key]; ok && time.Now().Before(entry.expiresAt) {
		return nil, false
	}
	lockStore[key] = lockEntry{token: l.token, expiresAt: time.Now().Add(ttl)}
	return l, true
}

// Refresh pushes the expiry ttl into the future. It reports false once the lock is no longer held.
func (l *Lock) Refresh(ttl time.Duration) bool {
	if l == nil {
		return false
	}
	if !l.memory {
		if rc := GetRedis(); rc != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			n, err := refreshScript.Run(ctx, rc, []string{lockPrefix + l.key}, l.token, ttl.Milliseconds()).Int()
			if err != nil {
				Sugar.Warnf("redis lock refresh failed key=%s err=%v", l.key, err)
				return false
			}
			return n == 1
		}
	}
	lockStoreMu.Lock()
	defer lockStoreMu.Unlock()
	entry, ok := lockStore[l.key]
	if !ok || entry.token != l.token || time.Now().After(entry.expiresAt) {
		return false
	}
	entry.expiresAt = time.Now().Add(ttl)
	lockStore[l.key] = entry
	return true
}

// Release drops the lock if it is still held by l.
func (l *Lock) Release() {
	if l == nil {
		return
	}
	if !l.memory {
		if rc := GetRedis(); rc != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, rc, []string{lockPrefix + l.key}, l.token).Err()
			return
		}
	}
	lockStoreMu.Lock()
	if entry, ok := lockStore[l.key]; ok && entry.token == l.token {
		delete(lockStore, l.key)
	}
	lockStoreMu.Unlock()
}
