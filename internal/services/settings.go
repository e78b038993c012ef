package services

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"fleetbook/internal/pkg/logger"
)

// Tunable business parameters read from system_settings. Every key has
// a compiled-in default so a missing or malformed row never fails a
// request; the fallback is logged instead.
const (
	SettingHolidaySurchargeRate    = "HOLIDAY_SURCHARGE_RATE"
	SettingWeekendSurchargeRate    = "WEEKEND_SURCHARGE_RATE"
	SettingRoundTripMultiplier     = "ROUND_TRIP_MULTIPLIER"
	SettingInterProvinceDistanceKm = "INTER_PROVINCE_DISTANCE_KM"
	SettingDefaultDepositPercent   = "DEFAULT_DEPOSIT_PERCENT"
	SettingPremiumSurcharge        = "PREMIUM_VEHICLE_SURCHARGE"
	SettingSameDayStartHour        = "SAME_DAY_TRIP_START_HOUR"
	SettingSameDayEndHour          = "SAME_DAY_TRIP_END_HOUR"

	SettingCancelFullLossHours    = "CANCELLATION_FULL_DEPOSIT_LOSS_HOURS"
	SettingCancelPartialLossHours = "CANCELLATION_PARTIAL_DEPOSIT_LOSS_HOURS"
	SettingCancelPartialPercent   = "CANCELLATION_PARTIAL_DEPOSIT_PERCENT"

	SettingMajorModificationMinHours = "BOOKING_MAJOR_MODIFICATION_MIN_HOURS"
	SettingMinorModificationMinHours = "BOOKING_MINOR_MODIFICATION_MIN_HOURS"

	SettingFullDayHireMinHours  = "FULL_DAY_HIRE_MIN_HOURS"
	SettingNextSlotMergeMinutes = "NEXT_SLOT_MERGE_MINUTES"
	SettingNextSlotLimit        = "NEXT_SLOT_LIMIT"
)

var settingDefaults = map[string]string{
	SettingHolidaySurchargeRate:    "0.25",
	SettingWeekendSurchargeRate:    "0.20",
	SettingRoundTripMultiplier:     "1.5",
	SettingInterProvinceDistanceKm: "100",
	SettingDefaultDepositPercent:   "0.50",
	SettingPremiumSurcharge:        "1000000",
	SettingSameDayStartHour:        "6",
	SettingSameDayEndHour:          "23",

	SettingCancelFullLossHours:    "24",
	SettingCancelPartialLossHours: "48",
	SettingCancelPartialPercent:   "0.30",

	SettingMajorModificationMinHours: "72",
	SettingMinorModificationMinHours: "24",

	SettingFullDayHireMinHours:  "20",
	SettingNextSlotMergeMinutes: "30",
	SettingNextSlotLimit:        "5",
}

// Settings resolves tunables against the store with typed accessors.
type Settings struct {
	Store SettingStore
	Log   logger.Logger
}

func (s *Settings) raw(key string) string {
	def := settingDefaults[key]
	if s == nil || s.Store == nil {
		return def
	}
	v, ok, err := s.Store.GetValue(key)
	if err != nil {
		s.warn(key, def, err)
		return def
	}
	if !ok || v == "" {
		return def
	}
	return v
}

func (s *Settings) Int(key string) int {
	v := s.raw(key)
	n, err := cast.ToIntE(v)
	if err != nil {
		def := settingDefaults[key]
		s.warn(key, def, err)
		return cast.ToInt(def)
	}
	return n
}

func (s *Settings) Float(key string) float64 {
	v := s.raw(key)
	f, err := cast.ToFloat64E(v)
	if err != nil {
		def := settingDefaults[key]
		s.warn(key, def, err)
		return cast.ToFloat64(def)
	}
	return f
}

func (s *Settings) Decimal(key string) decimal.Decimal {
	v := s.raw(key)
	d, err := decimal.NewFromString(v)
	if err != nil {
		def := settingDefaults[key]
		s.warn(key, def, err)
		d, _ = decimal.NewFromString(def)
	}
	return d
}

func (s *Settings) warn(key, def string, err error) {
	if s == nil || s.Log == nil {
		return
	}
	s.Log.Warn("setting fallback",
		logger.String("key", key),
		logger.String("default", def),
		logger.Err(err))
}
