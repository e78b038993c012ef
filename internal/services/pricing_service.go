package services

import (
	"time"

	"github.com/shopspring/decimal"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
	"fleetbook/internal/utils"
)

// PricingService turns a booking shape into a quoted price. Quote is
// deterministic: the same request against the same rate card always
// yields the same figure.
type PricingService struct {
	Rates    RateStore
	Settings *Settings
}

// CategoryQuantity is one requested line of a quote.
type CategoryQuantity struct {
	CategoryID int64 `json:"categoryId"`
	Quantity   int   `json:"quantity"`
}

type PriceRequest struct {
	Lines      []CategoryQuantity
	DistanceKm float64
	UseHighway bool
	HireType   string // "" lets the engine infer from the trip shape
	IsHoliday  bool
	IsWeekend  bool
	StartTime  *time.Time
	EndTime    *time.Time
}

type PriceQuote struct {
	Total    decimal.Decimal
	Deposit  decimal.Decimal
	HireType string // resolved hire type, may remain ""
	Days     int
}

// Quote prices every line and sums them. An empty request quotes zero;
// an unknown category fails the whole quote, an inactive one is skipped.
func (s PricingService) Quote(req PriceRequest) (PriceQuote, error) {
	days, sameDay := s.tripShape(req.StartTime, req.EndTime)

	hireType, err := s.resolveHireType(req.HireType, days, sameDay, req.DistanceKm)
	if err != nil {
		return PriceQuote{}, err
	}

	total := decimal.Zero
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return PriceQuote{}, domain.Validationf("quantity must be positive for category %d", line.CategoryID)
		}
		rate, err := s.Rates.Get(line.CategoryID)
		if err != nil {
			return PriceQuote{}, err
		}
		if !rate.Active {
			continue
		}

		subtotal := s.lineSubtotal(rate, hireType, req, days, sameDay)

		if req.UseHighway && rate.HighwayFee.IsPositive() {
			subtotal = subtotal.Add(rate.HighwayFee)
		}
		if rate.IsPremium {
			surcharge := rate.PremiumSurcharge
			if !surcharge.IsPositive() {
				surcharge = s.Settings.Decimal(SettingPremiumSurcharge)
			}
			subtotal = subtotal.Add(surcharge)
		}

		surchargeRate := decimal.Zero
		if req.IsHoliday {
			surchargeRate = surchargeRate.Add(s.Settings.Decimal(SettingHolidaySurchargeRate))
		}
		if req.IsWeekend {
			surchargeRate = surchargeRate.Add(s.Settings.Decimal(SettingWeekendSurchargeRate))
		}
		subtotal = subtotal.Add(subtotal.Mul(surchargeRate))

		total = total.Add(subtotal.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	total = utils.Round2(total)
	deposit := utils.Round2(total.Mul(s.Settings.Decimal(SettingDefaultDepositPercent)))
	return PriceQuote{Total: total, Deposit: deposit, HireType: hireType, Days: days}, nil
}

func (s PricingService) lineSubtotal(rate models.CategoryRate, hireType string, req PriceRequest, days int, sameDay bool) decimal.Decimal {
	dist := decimal.NewFromFloat(req.DistanceKm)
	kmFare := rate.PricePerKm.Mul(dist)
	multiplier := s.Settings.Decimal(SettingRoundTripMultiplier)
	daysD := decimal.NewFromInt(int64(days))

	switch hireType {
	case domain.HireOneWay:
		return kmFare.Add(rate.BaseFare)
	case domain.HireRoundTrip:
		return kmFare.Mul(multiplier).Add(rate.BaseFare)
	case domain.HireDaily, domain.HireMultiDay:
		return kmFare.Mul(multiplier).
			Add(rate.SameDayFixedPrice.Mul(daysD)).
			Add(rate.BaseFare)
	}

	// No hire type: same-day pricing.
	if sameDay {
		interProvince := decimal.NewFromFloat(s.Settings.Float(SettingInterProvinceDistanceKm))
		if dist.GreaterThan(interProvince) {
			return kmFare.Mul(multiplier).Add(rate.SameDayFixedPrice).Add(rate.BaseFare)
		}
		if rate.SameDayFixedPrice.IsPositive() {
			return rate.SameDayFixedPrice.Add(rate.BaseFare)
		}
	}
	return kmFare.Mul(multiplier).Add(rate.BaseFare)
}

func (s PricingService) resolveHireType(raw string, days int, sameDay bool, distanceKm float64) (string, error) {
	switch raw {
	case domain.HireOneWay, domain.HireRoundTrip, domain.HireDaily, domain.HireMultiDay:
		return raw, nil
	case "":
	default:
		return "", domain.Validationf("unknown hire type %q", raw)
	}

	// Infer from the trip shape. Short same-day hops price as one way;
	// other same-day trips keep the same-day formulas.
	switch {
	case sameDay && distanceKm > 0 && distanceKm < 10:
		return domain.HireOneWay, nil
	case sameDay:
		return "", nil
	case days > 1:
		return domain.HireMultiDay, nil
	default:
		return domain.HireDaily, nil
	}
}

// A trip only counts as same-day when it fits inside the configured
// working hours; anything running outside them prices like a day hire.
func (s PricingService) tripShape(start, end *time.Time) (days int, sameDay bool) {
	if start == nil || end == nil {
		return 1, false
	}
	sameDay = utils.SameDay(*start, *end) &&
		start.Hour() >= s.Settings.Int(SettingSameDayStartHour) &&
		end.Hour() <= s.Settings.Int(SettingSameDayEndHour)
	return utils.CalendarDays(*start, *end), sameDay
}
