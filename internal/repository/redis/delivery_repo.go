package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDeliveryTTL covers the provider's retry window
	DefaultDeliveryTTL = 24 * time.Hour
	deliveryKeyPrefix  = "nexus:webhook:delivery:"
)

// DeliveryLog implements domain.DeliveryLog on top of Redis keys with a TTL
type DeliveryLog struct {
	client  *goredis.Client
	ttl     time.Duration
	timeout time.Duration
}

// NewClient parses a redis:// URL and verifies connectivity
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// NewDeliveryLog creates a DeliveryLog. A non-positive ttl falls back to DefaultDeliveryTTL.
func NewDeliveryLog(client *goredis.Client, ttl time.Duration) *DeliveryLog {
	if ttl <= 0 {
		ttl = DefaultDeliveryTTL
	}
	return &DeliveryLog{
		client:  client,
		ttl:     ttl,
		timeout: 500 * time.Millisecond,
	}
}

// Seen reports whether the delivery was already processed
func (l *DeliveryLog) Seen(ctx context.Context, deliveryID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	n, err := l.client.Exists(ctx, deliveryKey(deliveryID)).Result()
	if err != nil {
		return false, fmt.Errorf("checking delivery %s: %w", deliveryID, err)
	}
	return n > 0, nil
}

// MarkProcessed records the delivery until the TTL expires
func (l *DeliveryLog) MarkProcessed(ctx context.Context, deliveryID string) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.client.Set(ctx, deliveryKey(deliveryID), time.Now().UTC().Format(time.RFC3339), l.ttl).Err(); err != nil {
		return fmt.Errorf("marking delivery %s: %w", deliveryID, err)
	}
	log.Debug().Str("delivery_id", deliveryID).Dur("ttl", l.ttl).Msg("Webhook delivery recorded")
	return nil
}

func deliveryKey(deliveryID string) string {
	return deliveryKeyPrefix + deliveryID
}
