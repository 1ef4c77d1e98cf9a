package queuestore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// appendIfAbsent guards the ordered-set rule on the Redis side: the check and
// the push happen in one script so concurrent joins cannot double-enter.
var appendIfAbsent = redis.NewScript(`
if redis.call('LPOS', KEYS[1], ARGV[1]) == false then
	redis.call('RPUSH', KEYS[1], ARGV[1])
	return 1
end
return 0
`)

// Redis is a Store backed by Redis lists under queue:{venue} keys, for
// deployments where several server instances share queue state.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Store over the given client.
func NewRedis(client *redis.Client) *Redis { return &Redis{client: client} }

func queueKey(venue string) string { return "queue:" + venue }

// Append adds the account at the tail unless it is already present.
func (r *Redis) Append(ctx context.Context, venue, account string) (bool, error) {
	n, err := appendIfAbsent.Run(ctx, r.client, []string{queueKey(venue)}, account).Int()
	if err != nil {
		return false, fmt.Errorf("queuestore: append %s/%s: %w", venue, account, err)
	}
	return n == 1, nil
}

// RemoveAll removes every occurrence of the account.
func (r *Redis) RemoveAll(ctx context.Context, venue, account string) (int, error) {
	n, err := r.client.LRem(ctx, queueKey(venue), 0, account).Result()
	if err != nil {
		return 0, fmt.Errorf("queuestore: remove %s/%s: %w", venue, account, err)
	}
	return int(n), nil
}

// Snapshot returns the venue's full sequence.
func (r *Redis) Snapshot(ctx context.Context, venue string) ([]string, error) {
	seq, err := r.client.LRange(ctx, queueKey(venue), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("queuestore: snapshot %s: %w", venue, err)
	}
	return seq, nil
}
