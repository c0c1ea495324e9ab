package bookings

import (
	"context"
	"time"

	"atlastours/internal/shared/config"
	"atlastours/pkg/logger"
)

const reminderBatchSize = 50

// ReminderProcessor periodically nudges customers whose booking has sat in
// PENDING without a settled payment.
type ReminderProcessor struct {
	repo     Repository
	notifier NotificationPublisher
	after    time.Duration
	interval time.Duration
	done     chan bool
	log      *logger.Logger
}

func NewReminderProcessor(repo Repository, notifier NotificationPublisher, cfg config.PaymentsConfig) *ReminderProcessor {
	return &ReminderProcessor{
		repo:     repo,
		notifier: notifier,
		after:    cfg.ReminderAfter,
		interval: cfg.ReminderInterval,
		done:     make(chan bool),
		log:      logger.GetDefault(),
	}
}

// Start begins the background reminder processing
func (rp *ReminderProcessor) Start() {
	if rp.after <= 0 || rp.notifier == nil {
		rp.log.Info("booking reminder sweep disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(rp.interval)
		defer ticker.Stop()

		rp.log.Info("booking reminder sweep started", "after", rp.after.String(), "interval", rp.interval.String())

		for {
			select {
			case <-ticker.C:
				rp.processReminders()
			case <-rp.done:
				rp.log.Info("booking reminder sweep stopped")
				return
			}
		}
	}()
}

// Stop stops the background processing
func (rp *ReminderProcessor) Stop() {
	close(rp.done)
}

func (rp *ReminderProcessor) processReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-rp.after)
	stale, err := rp.repo.FindPendingForReminder(ctx, cutoff, reminderBatchSize)
	if err != nil {
		rp.log.WithError(err).Error("reminder sweep query failed")
		return
	}

	for _, booking := range stale {
		if err := rp.notifier.PublishBookingReminder(ctx, booking.CustomerEmail, booking.CustomerName,
			booking.ID, booking.ServiceName); err != nil {
			rp.log.WithError(err).Warn("failed to publish booking reminder", "booking_id", booking.ID.String())
			continue
		}
		if err := rp.repo.StampReminder(ctx, booking.ID, time.Now()); err != nil {
			rp.log.WithError(err).Warn("failed to stamp reminder", "booking_id", booking.ID.String())
		}
	}

	if len(stale) > 0 {
		rp.log.Info("booking reminders published", "count", len(stale))
	}
}
