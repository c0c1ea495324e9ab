package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the database constraints AutoMigrate cannot express.
// The partial unique index on payments is what closes the race window on the
// one-active-payment-per-booking rule under concurrent creates.
func MigrateConstraints(db *gorm.DB) error {
	// At most one payment per booking may be PENDING or PENDING_REVIEW.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_active_payment_per_booking
		ON payments (booking_id)
		WHERE status IN ('PENDING', 'PENDING_REVIEW');
	`).Error
	if err != nil {
		return err
	}

	// Reservation and invoice numbers are assigned exactly once and never reused.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_booking_reservation_number
		ON bookings (reservation_number)
		WHERE reservation_number <> '';
	`).Error
	if err != nil {
		return err
	}

	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_booking_invoice_number
		ON bookings (invoice_number)
		WHERE invoice_number <> '';
	`).Error
	if err != nil {
		return err
	}

	// Index for the payment expiry sweep and the booking reminder sweep.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_payments_status_created_at
		ON payments (status, created_at);
	`).Error
	if err != nil {
		return err
	}

	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_status_created_at
		ON bookings (status, created_at);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
