package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
	"fleetbook/internal/pkg/logger"
	"fleetbook/internal/utils"
)

// How far in advance a booking may still be modified, and what counts
// as a major change, are settings; the 2 hour start-shift threshold for
// "major" is fixed.
const majorStartShift = 2 * time.Hour

// BookingService owns the booking lifecycle: create, modify, cancel,
// status moves and payments.
type BookingService struct {
	Bookings    BookingStore
	Trips       TripStore
	Assignments AssignmentStore
	Fleet       FleetStore
	Customers   CustomerStore
	Invoices    InvoiceStore
	Pricing     PricingService
	Settings    *Settings
	Log         logger.Logger
	Now         func() time.Time
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

type TripInput struct {
	StartTime     *time.Time `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
	StartLocation string     `json:"startLocation"`
	EndLocation   string     `json:"endLocation"`
	DistanceKm    float64    `json:"distanceKm"`
}

type CreateBookingCommand struct {
	CustomerID     int64
	BranchID       int64
	ConsultantID   *int64
	HireType       string
	UseHighway     bool
	IsHoliday      bool
	IsWeekend      bool
	Lines          []CategoryQuantity
	Trips          []TripInput
	EstimatedCost  *decimal.Decimal // nil means price via the engine
	DiscountAmount decimal.Decimal
	DepositAmount  *decimal.Decimal // nil means the default percentage
	Status         string
	Note           string
}

type UpdateBookingCommand struct {
	HireType       string
	UseHighway     bool
	IsHoliday      bool
	IsWeekend      bool
	Lines          []CategoryQuantity // nil keeps the stored vehicle lines
	Trips          []TripInput        // nil keeps the stored trips
	EstimatedCost  *decimal.Decimal
	DiscountAmount decimal.Decimal
	DepositAmount  *decimal.Decimal
	Note           string
}

// BookingDetail is the full aggregate returned to clients.
type BookingDetail struct {
	Booking  models.Booking         `json:"booking"`
	Details  []models.VehicleDetail `json:"vehicleDetails"`
	Trips    []models.Trip          `json:"trips"`
	Invoices []models.Invoice       `json:"invoices"`
}

// Create validates the request, prices it and stores the aggregate.
// The trip list is padded so every requested vehicle has its own trip.
func (s BookingService) Create(cmd CreateBookingCommand) (BookingDetail, error) {
	if _, err := s.Customers.Get(cmd.CustomerID); err != nil {
		return BookingDetail{}, err
	}
	branch, err := s.Fleet.GetBranch(cmd.BranchID)
	if err != nil {
		return BookingDetail{}, err
	}
	if !branch.Active {
		return BookingDetail{}, domain.Validationf("branch %q is not active", branch.Name)
	}
	if err := validateLines(cmd.Lines); err != nil {
		return BookingDetail{}, err
	}
	trips, err := buildTrips(cmd.Trips, models.TotalVehicleQuantity(toDetails(0, cmd.Lines)))
	if err != nil {
		return BookingDetail{}, err
	}

	estimated, hireType, err := s.resolvePrice(cmd.EstimatedCost, PriceRequest{
		Lines:      cmd.Lines,
		DistanceKm: maxDistance(trips),
		UseHighway: cmd.UseHighway,
		HireType:   cmd.HireType,
		IsHoliday:  cmd.IsHoliday,
		IsWeekend:  cmd.IsWeekend,
		StartTime:  trips[0].StartTime,
		EndTime:    lastEnd(trips),
	})
	if err != nil {
		return BookingDetail{}, err
	}

	total := utils.ClampNonNegative(estimated.Sub(cmd.DiscountAmount))
	deposit := utils.Round2(total.Mul(s.Settings.Decimal(SettingDefaultDepositPercent)))
	if cmd.DepositAmount != nil {
		deposit = utils.Round2(*cmd.DepositAmount)
	}

	now := s.now()
	b := models.Booking{
		Code:           newBookingCode(),
		CustomerID:     cmd.CustomerID,
		BranchID:       cmd.BranchID,
		ConsultantID:   cmd.ConsultantID,
		HireType:       hireType,
		UseHighway:     cmd.UseHighway,
		IsHoliday:      cmd.IsHoliday,
		IsWeekend:      cmd.IsWeekend,
		EstimatedCost:  estimated,
		DiscountAmount: cmd.DiscountAmount,
		TotalCost:      total,
		DepositAmount:  deposit,
		Status:         domain.ParseBookingStatus(cmd.Status),
		Note:           cmd.Note,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	id, err := s.Bookings.Insert(b, toDetails(0, cmd.Lines), trips)
	if err != nil {
		return BookingDetail{}, err
	}
	if s.Log != nil {
		s.Log.Info("booking created",
			logger.Int64("bookingId", id),
			logger.String("code", b.Code),
			logger.String("total", total.String()))
	}
	return s.Get(id)
}

// resolvePrice honors an explicitly supplied estimate; otherwise the
// pricing engine computes one and resolves the hire type with it.
func (s BookingService) resolvePrice(explicit *decimal.Decimal, req PriceRequest) (decimal.Decimal, string, error) {
	if explicit != nil {
		return utils.Round2(*explicit), req.HireType, nil
	}
	quote, err := s.Pricing.Quote(req)
	if err != nil {
		return decimal.Zero, "", err
	}
	return quote.Total, quote.HireType, nil
}

func (s BookingService) Get(id int64) (BookingDetail, error) {
	b, err := s.Bookings.Get(id)
	if err != nil {
		return BookingDetail{}, err
	}
	details, err := s.Bookings.VehicleDetails(id)
	if err != nil {
		return BookingDetail{}, err
	}
	trips, err := s.Trips.ListByBooking(id)
	if err != nil {
		return BookingDetail{}, err
	}
	invoices, err := s.Invoices.ListByBooking(id)
	if err != nil {
		return BookingDetail{}, err
	}
	return BookingDetail{Booking: b, Details: details, Trips: trips, Invoices: invoices}, nil
}

func (s BookingService) List(branchID int64, status string, limit, offset int) ([]models.Booking, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if status != "" {
		status = string(domain.ParseBookingStatus(status))
	}
	return s.Bookings.List(branchID, status, limit, offset)
}

// Update rewrites a booking in place. How close to departure a change
// is allowed depends on whether it is major (route, schedule shift over
// two hours, fleet shape) or minor.
func (s BookingService) Update(id int64, cmd UpdateBookingCommand) (BookingDetail, error) {
	b, err := s.Bookings.Get(id)
	if err != nil {
		return BookingDetail{}, err
	}
	if b.Status.IsTerminal() {
		return BookingDetail{}, domain.Conflictf("booking %s is %s and cannot be modified", b.Code, b.Status)
	}

	oldTrips, err := s.Trips.ListByBooking(id)
	if err != nil {
		return BookingDetail{}, err
	}
	for _, t := range oldTrips {
		if t.Status == domain.TripOngoing {
			return BookingDetail{}, domain.Conflictf("trip %d is already ongoing", t.ID)
		}
	}
	oldDetails, err := s.Bookings.VehicleDetails(id)
	if err != nil {
		return BookingDetail{}, err
	}

	// A nil array keeps the stored aggregate; only supplied arrays are
	// validated and replaced.
	lines := cmd.Lines
	if lines == nil {
		lines = toLines(oldDetails)
	} else if err := validateLines(lines); err != nil {
		return BookingDetail{}, err
	}

	effTrips := oldTrips
	var replacementTrips []models.Trip
	if cmd.Trips != nil {
		replacementTrips, err = buildTrips(cmd.Trips, models.TotalVehicleQuantity(toDetails(id, lines)))
		if err != nil {
			return BookingDetail{}, err
		}
		effTrips = replacementTrips
	}
	var replacementDetails []models.VehicleDetail
	if cmd.Lines != nil {
		replacementDetails = toDetails(id, cmd.Lines)
	}

	now := s.now()
	earliest := earliestStart(oldTrips)
	if earliest != nil && now.After(*earliest) {
		return BookingDetail{}, domain.Conflictf("booking %s has already started", b.Code)
	}

	if earliest != nil {
		hours := utils.HoursUntil(now, *earliest)
		required := float64(s.Settings.Int(SettingMinorModificationMinHours))
		if isMajorChange(oldTrips, effTrips, oldDetails, toDetails(id, lines)) {
			required = float64(s.Settings.Int(SettingMajorModificationMinHours))
		}
		if hours < required {
			return BookingDetail{}, domain.Conflictf(
				"changes need at least %.0f hours before departure, only %.1f left", required, hours)
		}
	}

	estimated, hireType, err := s.resolvePrice(cmd.EstimatedCost, PriceRequest{
		Lines:      lines,
		DistanceKm: maxDistance(effTrips),
		UseHighway: cmd.UseHighway,
		HireType:   cmd.HireType,
		IsHoliday:  cmd.IsHoliday,
		IsWeekend:  cmd.IsWeekend,
		StartTime:  earliestStart(effTrips),
		EndTime:    lastEnd(effTrips),
	})
	if err != nil {
		return BookingDetail{}, err
	}

	b.HireType = hireType
	b.UseHighway = cmd.UseHighway
	b.IsHoliday = cmd.IsHoliday
	b.IsWeekend = cmd.IsWeekend
	b.EstimatedCost = estimated
	b.DiscountAmount = cmd.DiscountAmount
	b.TotalCost = utils.ClampNonNegative(estimated.Sub(cmd.DiscountAmount))
	if cmd.DepositAmount != nil {
		b.DepositAmount = utils.Round2(*cmd.DepositAmount)
	}
	b.Note = cmd.Note
	b.UpdatedAt = now

	if err := s.Bookings.Update(b, replacementDetails, replacementTrips); err != nil {
		return BookingDetail{}, err
	}
	if s.Log != nil {
		s.Log.Info("booking updated", logger.Int64("bookingId", id))
	}
	return s.Get(id)
}

// UpdateStatus applies one legal lifecycle move.
func (s BookingService) UpdateStatus(id int64, target string) (models.Booking, error) {
	b, err := s.Bookings.Get(id)
	if err != nil {
		return models.Booking{}, err
	}
	to := domain.ParseBookingStatus(target)
	if to == b.Status {
		return b, nil
	}
	if !domain.CanTransition(b.Status, to) {
		return models.Booking{}, domain.Conflictf("cannot move booking %s from %s to %s", b.Code, b.Status, to)
	}
	if err := s.Bookings.UpdateStatus(id, to); err != nil {
		return models.Booking{}, err
	}
	b.Status = to
	return b, nil
}

// CancelResult reports what cancelling cost the customer.
type CancelResult struct {
	Booking     models.Booking  `json:"booking"`
	DepositLoss decimal.Decimal `json:"depositLoss"`
	LossPercent int             `json:"lossPercent"`
}

// Cancel terminates the booking, releases its trips and resources, and
// keeps part or all of the deposit depending on how late the
// cancellation comes.
func (s BookingService) Cancel(id int64, reason string) (CancelResult, error) {
	b, err := s.Bookings.Get(id)
	if err != nil {
		return CancelResult{}, err
	}
	if b.Status.IsTerminal() {
		return CancelResult{}, domain.Conflictf("booking %s is already %s", b.Code, b.Status)
	}

	trips, err := s.Trips.ListByBooking(id)
	if err != nil {
		return CancelResult{}, err
	}
	for _, t := range trips {
		if t.Status == domain.TripOngoing {
			return CancelResult{}, domain.Conflictf("trip %d is already ongoing", t.ID)
		}
	}

	loss, percent := s.depositLoss(b, trips)
	if loss.IsPositive() {
		_, err := s.Invoices.Insert(models.Invoice{
			BookingID: id,
			Kind:      models.InvoiceIncome,
			Amount:    loss,
			Status:    models.InvoiceConfirmed,
			Note:      fmt.Sprintf("deposit retained (%d%%) on cancellation: %s", percent, reason),
			CreatedAt: s.now(),
		})
		if err != nil {
			return CancelResult{}, err
		}
	}

	for _, t := range trips {
		if t.Status.Active() {
			if err := s.Assignments.UnbindTrip(t.ID); err != nil {
				return CancelResult{}, err
			}
			if err := s.Trips.UpdateStatus(t.ID, domain.TripCancelled); err != nil {
				return CancelResult{}, err
			}
		}
	}
	if err := s.Bookings.UpdateStatus(id, domain.BookingCancelled); err != nil {
		return CancelResult{}, err
	}
	b.Status = domain.BookingCancelled

	if s.Log != nil {
		s.Log.Info("booking cancelled",
			logger.Int64("bookingId", id),
			logger.String("depositLoss", loss.String()))
	}
	return CancelResult{Booking: b, DepositLoss: loss, LossPercent: percent}, nil
}

// depositLoss: inside the full-loss window (or already departed) the
// whole deposit is kept, inside the partial window a percentage, before
// that nothing.
func (s BookingService) depositLoss(b models.Booking, trips []models.Trip) (decimal.Decimal, int) {
	if !b.DepositAmount.IsPositive() {
		return decimal.Zero, 0
	}
	earliest := earliestStart(trips)
	if earliest == nil {
		return decimal.Zero, 0
	}
	hours := utils.HoursUntil(s.now(), *earliest)
	switch {
	case hours < float64(s.Settings.Int(SettingCancelFullLossHours)):
		return b.DepositAmount, 100
	case hours < float64(s.Settings.Int(SettingCancelPartialLossHours)):
		pct := s.Settings.Decimal(SettingCancelPartialPercent)
		loss := utils.Round2(b.DepositAmount.Mul(pct))
		return loss, int(pct.Mul(decimal.NewFromInt(100)).IntPart())
	default:
		return decimal.Zero, 0
	}
}

// AddPayment records a confirmed deposit or payment invoice.
func (s BookingService) AddPayment(bookingID int64, kind string, amount decimal.Decimal, note string) (models.Invoice, error) {
	kind = strings.ToUpper(strings.TrimSpace(kind))
	if kind != models.InvoiceDeposit && kind != models.InvoicePayment && kind != models.InvoiceRefund {
		return models.Invoice{}, domain.Validationf("unknown invoice kind %q", kind)
	}
	if !amount.IsPositive() {
		return models.Invoice{}, domain.Validationf("amount must be positive")
	}
	b, err := s.Bookings.Get(bookingID)
	if err != nil {
		return models.Invoice{}, err
	}
	if b.Status == domain.BookingCancelled {
		return models.Invoice{}, domain.Conflictf("booking %s is cancelled", b.Code)
	}

	inv := models.Invoice{
		BookingID: bookingID,
		Kind:      kind,
		Amount:    utils.Round2(amount),
		Status:    models.InvoiceConfirmed,
		Note:      note,
		CreatedAt: s.now(),
	}
	id, err := s.Invoices.Insert(inv)
	if err != nil {
		return models.Invoice{}, err
	}
	inv.ID = id
	return inv, nil
}

func validateLines(lines []CategoryQuantity) error {
	if len(lines) == 0 {
		return domain.Validationf("at least one vehicle line is required")
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return domain.Validationf("quantity must be positive for category %d", l.CategoryID)
		}
	}
	return nil
}

// buildTrips validates trip windows and pads the list by cloning the
// first trip until every requested vehicle has a trip of its own.
func buildTrips(inputs []TripInput, totalQuantity int) ([]models.Trip, error) {
	if len(inputs) == 0 {
		return nil, domain.Validationf("at least one trip is required")
	}
	var trips []models.Trip
	for _, in := range inputs {
		if in.StartTime != nil && in.EndTime != nil && !in.EndTime.After(*in.StartTime) {
			return nil, domain.Validationf("trip end time must be after start time")
		}
		if in.DistanceKm < 0 {
			return nil, domain.Validationf("distance cannot be negative")
		}
		trips = append(trips, models.Trip{
			StartTime:     in.StartTime,
			EndTime:       in.EndTime,
			StartLocation: in.StartLocation,
			EndLocation:   in.EndLocation,
			DistanceKm:    in.DistanceKm,
			Status:        domain.TripScheduled,
		})
	}
	for len(trips) < totalQuantity {
		clone := trips[0]
		trips = append(trips, clone)
	}
	return trips, nil
}

func toDetails(bookingID int64, lines []CategoryQuantity) []models.VehicleDetail {
	out := make([]models.VehicleDetail, 0, len(lines))
	for _, l := range lines {
		out = append(out, models.VehicleDetail{
			BookingID:  bookingID,
			CategoryID: l.CategoryID,
			Quantity:   l.Quantity,
		})
	}
	return out
}

func toLines(details []models.VehicleDetail) []CategoryQuantity {
	out := make([]CategoryQuantity, 0, len(details))
	for _, d := range details {
		out = append(out, CategoryQuantity{CategoryID: d.CategoryID, Quantity: d.Quantity})
	}
	return out
}

func earliestStart(trips []models.Trip) *time.Time {
	var earliest *time.Time
	for _, t := range trips {
		if t.StartTime == nil {
			continue
		}
		if earliest == nil || t.StartTime.Before(*earliest) {
			st := *t.StartTime
			earliest = &st
		}
	}
	return earliest
}

func lastEnd(trips []models.Trip) *time.Time {
	var last *time.Time
	for _, t := range trips {
		if t.EndTime == nil {
			continue
		}
		if last == nil || t.EndTime.After(*last) {
			et := *t.EndTime
			last = &et
		}
	}
	return last
}

func maxDistance(trips []models.Trip) float64 {
	max := 0.0
	for _, t := range trips {
		if t.DistanceKm > max {
			max = t.DistanceKm
		}
	}
	return max
}

func isMajorChange(oldTrips, newTrips []models.Trip, oldDetails, newDetails []models.VehicleDetail) bool {
	if len(oldTrips) != len(newTrips) {
		return true
	}
	for i := range oldTrips {
		o, n := oldTrips[i], newTrips[i]
		if o.StartLocation != n.StartLocation || o.EndLocation != n.EndLocation {
			return true
		}
		if o.StartTime != nil && n.StartTime != nil {
			shift := n.StartTime.Sub(*o.StartTime)
			if shift < 0 {
				shift = -shift
			}
			if shift > majorStartShift {
				return true
			}
		} else if (o.StartTime == nil) != (n.StartTime == nil) {
			return true
		}
	}
	if len(oldDetails) != len(newDetails) {
		return true
	}
	for i := range oldDetails {
		if oldDetails[i].CategoryID != newDetails[i].CategoryID ||
			oldDetails[i].Quantity != newDetails[i].Quantity {
			return true
		}
	}
	return false
}

func newBookingCode() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}
