package redis

import (
	"context"
	"time"

	"dugod-content-service/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds our token, so a holder whose
// lock expired cannot release somebody else's.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SubmissionGuard is a Redis-backed implementation of app.SubmissionGuard.
// Notes:
//   - The lock is SET NX with a TTL, so a crashed instance frees the user after ttl.
//   - It serialises submissions across every instance sharing the Redis database.
type SubmissionGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSubmissionGuard(client *redis.Client, ttl time.Duration) *SubmissionGuard {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &SubmissionGuard{client: client, ttl: ttl}
}

func (g *SubmissionGuard) Acquire(ctx context.Context, userID string) (func(), error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.key(userID), token, g.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrSubmissionInProgress
	}
	return func() {
		// best-effort; the TTL cleans up if this fails
		_ = releaseScript.Run(context.Background(), g.client, []string{g.key(userID)}, token).Err()
	}, nil
}

func (g *SubmissionGuard) key(userID string) string {
	return "blackbox:submit:" + userID
}
