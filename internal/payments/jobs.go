package payments

import (
	"context"
	"time"

	"atlastours/internal/shared/config"
	"atlastours/pkg/logger"
)

const expiryBatchSize = 50

// ExpiryProcessor cancels payments left in PENDING beyond the configured TTL.
// It goes through Service.Cancel like any other actor, so the state machine
// rules and booking detach apply unchanged.
type ExpiryProcessor struct {
	repo     Repository
	service  Service
	ttl      time.Duration
	interval time.Duration
	done     chan bool
	log      *logger.Logger
}

func NewExpiryProcessor(repo Repository, service Service, cfg config.PaymentsConfig) *ExpiryProcessor {
	return &ExpiryProcessor{
		repo:     repo,
		service:  service,
		ttl:      cfg.PendingTTL,
		interval: cfg.SweepInterval,
		done:     make(chan bool),
		log:      logger.GetDefault(),
	}
}

// Start begins the background expiry processing
func (ep *ExpiryProcessor) Start() {
	if ep.ttl <= 0 {
		ep.log.Info("payment expiry sweep disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(ep.interval)
		defer ticker.Stop()

		ep.log.Info("payment expiry sweep started", "ttl", ep.ttl.String(), "interval", ep.interval.String())

		for {
			select {
			case <-ticker.C:
				ep.processExpired()
			case <-ep.done:
				ep.log.Info("payment expiry sweep stopped")
				return
			}
		}
	}()
}

// Stop stops the background processing
func (ep *ExpiryProcessor) Stop() {
	close(ep.done)
}

func (ep *ExpiryProcessor) processExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-ep.ttl)
	stale, err := ep.repo.FindStalePending(ctx, cutoff, expiryBatchSize)
	if err != nil {
		ep.log.WithError(err).Error("payment expiry sweep query failed")
		return
	}

	cancelled := 0
	for _, payment := range stale {
		if err := ep.service.Cancel(ctx, payment.ID, "payment expired awaiting evidence"); err != nil {
			// A racing operator confirm is fine; the next tick skips the row.
			ep.log.WithError(err).Warn("failed to expire payment", "payment_id", payment.ID.String())
			continue
		}
		cancelled++
	}

	if cancelled > 0 {
		ep.log.Info("expired pending payments cancelled", "count", cancelled)
	}
}
