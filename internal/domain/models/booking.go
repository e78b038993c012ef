package models

import (
	"time"

	"github.com/shopspring/decimal"

	"fleetbook/internal/domain"
)

// Booking is the root aggregate: one customer order covering one or more
// trips and one or more vehicle lines.
type Booking struct {
	ID             int64
	Code           string
	CustomerID     int64
	BranchID       int64
	ConsultantID   *int64
	HireType       string // "" until chosen or inferred
	UseHighway     bool
	IsHoliday      bool
	IsWeekend      bool
	EstimatedCost  decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalCost      decimal.Decimal
	DepositAmount  decimal.Decimal
	Status         domain.BookingStatus
	Note           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// VehicleDetail is one requested line: N vehicles of a category.
type VehicleDetail struct {
	ID         int64
	BookingID  int64
	CategoryID int64
	Quantity   int
}

// TotalVehicleQuantity sums the requested quantities across all lines.
func TotalVehicleQuantity(details []VehicleDetail) int {
	total := 0
	for _, d := range details {
		total += d.Quantity
	}
	return total
}

// Invoice records money moving for a booking. Kind is DEPOSIT, PAYMENT,
// REFUND or INCOME; Status is PENDING, CONFIRMED or VOID.
type Invoice struct {
	ID        int64
	BookingID int64
	Kind      string
	Amount    decimal.Decimal
	Status    string
	Note      string
	CreatedAt time.Time
}

const (
	InvoiceDeposit = "DEPOSIT"
	InvoicePayment = "PAYMENT"
	InvoiceRefund  = "REFUND"
	InvoiceIncome  = "INCOME"

	InvoicePending   = "PENDING"
	InvoiceConfirmed = "CONFIRMED"
	InvoiceVoid      = "VOID"
)
