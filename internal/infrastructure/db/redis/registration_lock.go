package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// DefaultLockTTL bounds how long a crashed registration can block retries.
	DefaultLockTTL = 10 * time.Second
	lockKeyPrefix  = "register:"
)

// releaseLua deletes the key only while it still carries our token, so a
// registration whose lock already expired cannot free a newer holder's lock.
var releaseLua = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RegistrationLock serialises registrations of the same email across
// instances with SET NX.
type RegistrationLock struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    zerolog.Logger
}

func NewRegistrationLock(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *RegistrationLock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RegistrationLock{client: client, ttl: ttl, log: log}
}

// Acquire takes the lock for email. ok is false when another registration
// holds it. The returned release is safe to call once the request is done.
func (l *RegistrationLock) Acquire(ctx context.Context, email string) (func(context.Context), bool, error) {
	key := lockKeyPrefix + email
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire registration lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) {
		if err := releaseLua.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.log.Warn().Err(err).Msg("release registration lock")
		}
	}
	return release, true, nil
}
