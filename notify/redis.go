package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	redis "github.com/redis/go-redis/v9"
)

// RedisNotifier publishes events over Redis pub/sub. Socket gateways
// subscribe to `notify:user:{id}` for per-user delivery and `notify:staff`
// for the admin/manager broadcast stream.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) NotifyUser(ctx context.Context, userID uint, ev Event) {
	n.publish(ctx, fmt.Sprintf("notify:user:%d", userID), ev)
}

func (n *RedisNotifier) Broadcast(ctx context.Context, ev Event) {
	n.publish(ctx, "notify:staff", ev)
}

func (n *RedisNotifier) publish(ctx context.Context, channel string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[notify] marshal %s: %v", ev.Type, err)
		return
	}
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		log.Printf("[notify] publish %s to %s: %v", ev.Type, channel, err)
	}
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
