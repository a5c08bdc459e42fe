package redis

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adameda/revisia/internal/domain"
)

// QuotaStore tracks per-user daily generation allowances in Redis with one
// counter per user and day: INCR quota:gen:{userID}:{yyyy-mm-dd}. Counters
// expire on their own, so a day rollover needs no cleanup pass.
type QuotaStore struct {
	client *redis.Client
	limit  int
	clock  func() time.Time
}

func NewQuotaStore(client *redis.Client, limit int) *QuotaStore {
	return &QuotaStore{client: client, limit: limit, clock: time.Now}
}

// NewQuotaStoreWithClock is test-only for deterministic day keys.
func NewQuotaStoreWithClock(client *redis.Client, limit int, clock func() time.Time) *QuotaStore {
	return &QuotaStore{client: client, limit: limit, clock: clock}
}

func (s *QuotaStore) Consume(ctx context.Context, userID string) (int, error) {
	key := s.key(userID)
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		// Without the TTL the dated counter would linger forever.
		if err := s.client.Expire(ctx, key, 24*time.Hour).Err(); err != nil {
			log.Printf("quota expire failed (key=%s): %v", key, err)
		}
	}
	if count > int64(s.limit) {
		return 0, domain.ErrQuotaExceeded
	}
	return s.limit - int(count), nil
}

func (s *QuotaStore) key(userID string) string {
	return "quota:gen:" + userID + ":" + s.clock().Format("2006-01-02")
}
