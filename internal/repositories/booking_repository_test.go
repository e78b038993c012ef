package repositories

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
)

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "code", "customer_id", "branch_id", "consultant_id", "hire_type",
		"use_highway", "is_holiday", "is_weekend", "estimated_cost", "discount_amount",
		"total_cost", "deposit_amount", "status", "note", "created_at", "updated_at",
	})
}

func TestBookingRepoGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .+ FROM bookings WHERE id = ?").
		WithArgs(int64(7)).
		WillReturnRows(bookingRows().AddRow(
			7, "BK-1A2B3C4D", 1, 1, nil, "ONE_WAY",
			true, false, true, "1500000.00", "0.00",
			"1500000.00", "750000.00", "CONFIRMED", "vip", now, now,
		))

	repo := BookingRepo{DB: db}
	b, err := repo.Get(7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.Code != "BK-1A2B3C4D" || b.Status != domain.BookingConfirmed {
		t.Errorf("booking = %+v", b)
	}
	if !b.TotalCost.Equal(decimal.NewFromInt(1500000)) {
		t.Errorf("total = %s, want 1500000", b.TotalCost)
	}
	if b.ConsultantID != nil {
		t.Errorf("consultant should be nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestBookingRepoGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM bookings WHERE id = ?").
		WithArgs(int64(99)).
		WillReturnRows(bookingRows())

	repo := BookingRepo{DB: db}
	if _, err := repo.Get(99); !domain.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestBookingRepoInsertIsTransactional(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	start := now.Add(48 * time.Hour)
	end := start.Add(5 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO booking_vehicle_details").
		WithArgs(int64(11), int64(1), 2).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO trips").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := BookingRepo{DB: db}
	id, err := repo.Insert(
		models.Booking{
			Code:       "BK-AA11BB22",
			CustomerID: 1,
			BranchID:   1,
			Status:     domain.BookingPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		[]models.VehicleDetail{{CategoryID: 1, Quantity: 2}},
		[]models.Trip{{StartTime: &start, EndTime: &end, DistanceKm: 100, Status: domain.TripScheduled}},
	)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != 11 {
		t.Errorf("id = %d, want 11", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestBookingRepoInsertRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO booking_vehicle_details").
		WillReturnError(errDummy)
	mock.ExpectRollback()

	repo := BookingRepo{DB: db}
	_, err = repo.Insert(
		models.Booking{Code: "BK-AA11BB22", Status: domain.BookingPending},
		[]models.VehicleDetail{{CategoryID: 1, Quantity: 1}},
		nil,
	)
	if !domain.IsInternal(err) {
		t.Errorf("err = %v, want internal", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
