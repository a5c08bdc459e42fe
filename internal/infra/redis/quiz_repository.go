package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/adameda/revisia/internal/domain"
)

// QuizLoader fetches a document's quiz from a backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, documentID string) (domain.Quiz, error)
}

// QuizRepository caches the full quiz JSON in Redis and falls back to the
// loader on a miss. Cached as: SET quiz:{documentID}:questions {json}.
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, documentID string) (domain.Quiz, error) {
	if quiz, ok := r.fromCache(ctx, documentID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(documentID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.fromCache(ctx, documentID); ok {
			return quiz, nil
		}

		quiz, err := r.loader.LoadQuiz(ctx, documentID)
		if err != nil {
			return domain.Quiz{}, err
		}

		if raw, err := json.Marshal(quiz); err == nil {
			// cache fill is best-effort
			_ = r.client.Set(ctx, r.key(documentID), raw, r.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops the cached quiz so a freshly generated one is picked up.
func (r *QuizRepository) Invalidate(ctx context.Context, documentID string) {
	_ = r.client.Del(ctx, r.key(documentID)).Err()
}

func (r *QuizRepository) fromCache(ctx context.Context, documentID string) (domain.Quiz, bool) {
	raw, err := r.client.Get(ctx, r.key(documentID)).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (r *QuizRepository) key(documentID string) string {
	return "quiz:" + documentID + ":questions"
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
