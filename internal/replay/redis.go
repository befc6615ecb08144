package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.encore.dev/statusauth/pkg/auth"
)

// Redis is a Guard shared between responder replicas.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis returns a Guard storing tags under prefix in client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "statusauth:replay:"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Seen(ctx context.Context, identity string, tag auth.Tag, ttl time.Duration) (bool, error) {
	stored, err := r.client.SetNX(ctx, r.prefix+entryKey(identity, tag), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("replay guard: %w", err)
	}
	return !stored, nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
