package numbering

import (
	"context"
	"fmt"
	"time"

	"atlastours/internal/shared/config"

	"github.com/redis/go-redis/v9"
)

// Authority hands out globally unique reservation and invoice numbers. Two
// concurrent confirmations must never receive the same number, so sequencing
// goes through an atomic Redis counter rather than a read-then-write count.
type Authority interface {
	NextReservationNumber(ctx context.Context) (string, error)
	NextInvoiceNumber(ctx context.Context) (string, error)
}

// SeedFunc returns the count of already-confirmed bookings. It seeds a day's
// counter the first time that counter is touched, so numbering continues from
// the existing history instead of restarting at 1 after a Redis flush.
type SeedFunc func(ctx context.Context) (int64, error)

type redisAuthority struct {
	client *redis.Client
	cfg    config.NumberingConfig
	seed   SeedFunc
	now    func() time.Time
}

// NewRedisAuthority creates the Redis-backed numbering authority.
func NewRedisAuthority(client *redis.Client, cfg config.NumberingConfig, seed SeedFunc) Authority {
	return &redisAuthority{
		client: client,
		cfg:    cfg,
		seed:   seed,
		now:    time.Now,
	}
}

func (a *redisAuthority) NextReservationNumber(ctx context.Context) (string, error) {
	return a.next(ctx, a.cfg.ReservationPrefix)
}

func (a *redisAuthority) NextInvoiceNumber(ctx context.Context) (string, error) {
	return a.next(ctx, a.cfg.InvoicePrefix)
}

func (a *redisAuthority) next(ctx context.Context, prefix string) (string, error) {
	day := a.now().UTC().Format("20060102")
	key := CounterKey(prefix, day)

	if a.seed != nil {
		// SETNX seeds exactly one writer per day; INCR below is atomic either way.
		count, err := a.seed(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to seed numbering counter: %w", err)
		}
		if err := a.client.SetNX(ctx, key, count, 48*time.Hour).Err(); err != nil {
			return "", fmt.Errorf("failed to seed numbering counter: %w", err)
		}
	}

	seq, err := a.client.Incr(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to increment numbering counter: %w", err)
	}

	return Format(prefix, day, seq, a.cfg.SequenceWidth), nil
}

// CounterKey builds the Redis key for a prefix+day counter.
func CounterKey(prefix, day string) string {
	return fmt.Sprintf("atlastours:numbering:%s:%s", prefix, day)
}

// Format renders a number as PREFIX-YYYYMMDD-NNNN with a zero-padded sequence.
// Sequences wider than the configured width keep all their digits.
func Format(prefix, day string, seq int64, width int) string {
	if width <= 0 {
		width = 4
	}
	return fmt.Sprintf("%s-%s-%0*d", prefix, day, width, seq)
}
