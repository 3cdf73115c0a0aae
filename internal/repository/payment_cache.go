package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// PaymentCache is a best-effort duplicate-delivery short circuit in front of
// the ledger. It is never authoritative: a cache miss or a dead Redis just
// means the transactional insert-if-absent does the work.
type PaymentCache interface {
	Seen(ctx context.Context, paymentID string) bool
	MarkSeen(ctx context.Context, paymentID string)
}

// seenTTL comfortably outlives Mercado Pago's redelivery window.
const seenTTL = 72 * time.Hour

type redisPaymentCache struct {
	client *redis.Client
	prefix string
}

func NewPaymentCache(client *redis.Client) PaymentCache {
	if client == nil {
		return nopPaymentCache{}
	}
	return &redisPaymentCache{client: client, prefix: "mp_payment:"}
}

func (c *redisPaymentCache) Seen(ctx context.Context, paymentID string) bool {
	n, err := c.client.Exists(ctx, c.prefix+paymentID).Result()
	if err != nil {
		slog.Debug("payment cache read failed", "error", err)
		return false
	}
	return n > 0
}

func (c *redisPaymentCache) MarkSeen(ctx context.Context, paymentID string) {
	if err := c.client.Set(ctx, c.prefix+paymentID, 1, seenTTL).Err(); err != nil {
		slog.Debug("payment cache write failed", "error", err)
	}
}

type nopPaymentCache struct{}

func (nopPaymentCache) Seen(ctx context.Context, paymentID string) bool { return false }
func (nopPaymentCache) MarkSeen(ctx context.Context, paymentID string)  {}
