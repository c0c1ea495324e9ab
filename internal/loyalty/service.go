package loyalty

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service converts confirmed booking totals into loyalty points.
type Service interface {
	// AccrueForBooking grants points for a confirmed booking. Safe to call more
	// than once for the same booking; only the first call accrues.
	AccrueForBooking(ctx context.Context, bookingID uuid.UUID, customerEmail string, total float64) (accrued bool, err error)
	GetCustomerPoints(ctx context.Context, email string) (int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) AccrueForBooking(ctx context.Context, bookingID uuid.UUID, customerEmail string, total float64) (bool, error) {
	points := PointsForTotal(total)
	if points == 0 {
		return false, nil
	}

	accrual := &Accrual{
		BookingID:     bookingID,
		CustomerEmail: customerEmail,
		Points:        points,
	}

	created, err := s.repo.CreateAccrual(ctx, accrual)
	if err != nil {
		return false, fmt.Errorf("failed to accrue loyalty points: %w", err)
	}
	return created, nil
}

func (s *service) GetCustomerPoints(ctx context.Context, email string) (int64, error) {
	return s.repo.TotalPointsForCustomer(ctx, email)
}
