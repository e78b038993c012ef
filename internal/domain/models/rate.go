package models

import "github.com/shopspring/decimal"

// CategoryRate is a vehicle category together with its current rate
// card. Rates are currency amounts, so decimals throughout.
type CategoryRate struct {
	ID                int64
	Name              string
	Seats             int
	BaseFare          decimal.Decimal
	PricePerKm        decimal.Decimal
	HighwayFee        decimal.Decimal
	SameDayFixedPrice decimal.Decimal
	IsPremium         bool
	PremiumSurcharge  decimal.Decimal
	Active            bool
}

// User is a back-office account used by the HTTP layer.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	BranchID     *int64
	Active       bool
}
