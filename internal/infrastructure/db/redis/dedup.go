package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const deliveryTTL = 24 * time.Hour

// DeliveryLog remembers which notifications were delivered so a redelivered
// broker message is not mailed twice.
// Key format: delivered:<notification_id>
type DeliveryLog struct {
	client *redis.Client
}

func NewDeliveryLog(client *redis.Client) *DeliveryLog {
	return &DeliveryLog{client: client}
}

// Claim reports whether the caller is the first to handle id. The claim
// expires after deliveryTTL.
func (d *DeliveryLog) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(id), "1", deliveryTTL).Result()
	if err != nil {
		return false, fmt.Errorf("delivery claim: %w", err)
	}
	return ok, nil
}

// Forget drops a claim after a failed delivery so a retry can go ahead.
func (d *DeliveryLog) Forget(ctx context.Context, id string) error {
	return d.client.Del(ctx, d.key(id)).Err()
}

func (d *DeliveryLog) key(id string) string {
	return fmt.Sprintf("delivered:%s", id)
}
