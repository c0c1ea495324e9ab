package payments

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"atlastours/internal/shared/apperrors"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open error: %v", err)
	}
	return gdb, mock
}

// The compare-and-set update must carry both the id and the expected status in
// the WHERE clause, and report whether a row moved.
func TestUpdateStatusIfCompareAndSet(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRepository(gdb)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "payments" SET .+ WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.UpdateStatusIf(context.Background(), id, StatusPendingReview, StatusCompleted, nil)
	if err != nil {
		t.Fatalf("UpdateStatusIf: %v", err)
	}
	if !updated {
		t.Error("expected the row to be updated")
	}

	// Row already moved: zero rows affected means the caller lost the race.
	mock.ExpectExec(`UPDATE "payments" SET .+ WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err = repo.UpdateStatusIf(context.Background(), id, StatusPendingReview, StatusCompleted, nil)
	if err != nil {
		t.Fatalf("UpdateStatusIf: %v", err)
	}
	if updated {
		t.Error("lost CAS must report not-updated, not an error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateIfNoActiveRejectsLivePayment(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRepository(gdb)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "payments" WHERE booking_id = \$\d+ AND status IN \(\$\d+,\$\d+\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.CreateIfNoActive(context.Background(), &Payment{
		BookingID: uuid.New(),
		Method:    MethodBankTransfer,
		Amount:    1000,
		Currency:  "MAD",
		Status:    StatusPending,
	})
	if !apperrors.IsConflict(err) {
		t.Fatalf("got %v, want ConflictError", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateIfNoActiveInsertsWhenSlotFree(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRepository(gdb)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))

	err := repo.CreateIfNoActive(context.Background(), &Payment{
		BookingID:     uuid.New(),
		CustomerName:  "Yassine Alami",
		CustomerEmail: "yassine@example.com",
		Method:        MethodCash,
		Amount:        500,
		Currency:      "MAD",
		Status:        StatusPending,
	})
	if err != nil {
		t.Fatalf("CreateIfNoActive: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
