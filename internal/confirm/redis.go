package confirm

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// RedisStore keeps tokens in redis so any instance behind the load balancer
// can consume a token issued by another.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) Issue(ctx context.Context, userID snowflake.ID) (string, error) {
	if userID == 0 {
		return "", ErrInvalidUser
	}
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.key(userID, token), "1", s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Consume(ctx context.Context, userID snowflake.ID, token string) (bool, error) {
	if userID == 0 || token == "" {
		return false, nil
	}
	// DEL is atomic: exactly one caller observes the key.
	deleted, err := s.client.Del(ctx, s.key(userID, token)).Result()
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

func (s *RedisStore) key(userID snowflake.ID, token string) string {
	return fmt.Sprintf("paygate:confirm:%s:%s", userID.String(), token)
}
