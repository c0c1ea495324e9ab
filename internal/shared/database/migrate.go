package database

import (
	"atlastours/internal/bookings"
	"atlastours/internal/catalog"
	"atlastours/internal/loyalty"
	"atlastours/internal/payments"
	"atlastours/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// uuid_generate_v4() column defaults need the extension before AutoMigrate.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return err
	}

	return db.AutoMigrate(
		&users.User{},
		&catalog.TourService{},
		&bookings.Booking{},
		&payments.Payment{},
		&loyalty.Accrual{},
	)
}
