package services

import (
	"sort"
	"strings"
	"time"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
	"fleetbook/internal/pkg/logger"
	"fleetbook/internal/utils"
)

// Fairness weights for the driver workload score. A lower score wins;
// ties break on the lowest driver id so repeated runs pick the same
// driver.
const (
	weightTripsToday     = 40
	weightTripsThisWeek  = 30
	weightTripsLast3Days = 30
)

// DispatchService assigns drivers and vehicles to trips, either picked
// by the dispatcher or chosen automatically.
type DispatchService struct {
	Bookings    BookingStore
	Trips       TripStore
	Fleet       FleetStore
	Assignments AssignmentStore
	Invoices    InvoiceStore
	Rates       RateStore
	Settings    *Settings
	Log         logger.Logger
	Now         func() time.Time
}

type AssignCommand struct {
	BookingID int64
	TripIDs   []int64 // empty means every trip of the booking
	DriverID  int64   // 0 means pick automatically
	VehicleID int64   // 0 means pick automatically
	Note      string
}

// TripAssignment reports what was bound to a trip. A nil id means no
// eligible candidate existed for that role; the binding is left open
// for a later dispatch run.
type TripAssignment struct {
	TripID    int64  `json:"tripId"`
	DriverID  *int64 `json:"driverId"`
	VehicleID *int64 `json:"vehicleId"`
}

type AssignResult struct {
	BookingID     int64                `json:"bookingId"`
	BookingStatus domain.BookingStatus `json:"bookingStatus"`
	Assignments   []TripAssignment     `json:"assignments"`
}

func (s DispatchService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// PendingBookings lists confirmed bookings of a branch that still have
// at least one trip without a full driver+vehicle assignment.
func (s DispatchService) PendingBookings(branchID int64) ([]models.Booking, error) {
	bookings, err := s.Bookings.List(branchID, string(domain.BookingConfirmed), 200, 0)
	if err != nil {
		return nil, err
	}
	var out []models.Booking
	for _, b := range bookings {
		trips, err := s.Trips.ListByBooking(b.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range trips {
			done, err := s.tripFullyAssigned(t.ID)
			if err != nil {
				return nil, err
			}
			if !done {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

// Assign binds a driver and a vehicle to each target trip. The whole
// command is validated before the first binding is written; the command
// never reuses one driver or vehicle for two overlapping trips. A role
// with no eligible candidate is simply left unbound; only a trip where
// neither role can be resolved fails the command.
func (s DispatchService) Assign(cmd AssignCommand) (AssignResult, error) {
	booking, err := s.Bookings.Get(cmd.BookingID)
	if err != nil {
		return AssignResult{}, err
	}
	if booking.Status.IsTerminal() {
		return AssignResult{}, domain.Conflictf("booking %s is %s", booking.Code, booking.Status)
	}

	if booking.DepositAmount.IsPositive() {
		paid, err := s.Invoices.ConfirmedPaidAmount(booking.ID)
		if err != nil {
			return AssignResult{}, err
		}
		if paid.LessThan(booking.DepositAmount) {
			return AssignResult{}, domain.Conflictf(
				"deposit not settled: paid %s of %s", paid, booking.DepositAmount)
		}
	}

	trips, err := s.targetTrips(booking.ID, cmd.TripIDs)
	if err != nil {
		return AssignResult{}, err
	}

	maxSeats, err := s.maxSeats(booking.ID)
	if err != nil {
		return AssignResult{}, err
	}
	categoryID, err := s.singleCategory(booking.ID)
	if err != nil {
		return AssignResult{}, err
	}

	batch := newBatchReservations()
	var planned []plannedAssignment
	for _, trip := range trips {
		if trip.Status == domain.TripOngoing || !trip.Status.Active() {
			return AssignResult{}, domain.Conflictf("trip %d is %s and cannot be assigned", trip.ID, trip.Status)
		}

		driver, err := s.chooseDriver(booking, trip, cmd.DriverID, maxSeats, batch)
		if err != nil {
			return AssignResult{}, err
		}
		vehicle, err := s.chooseVehicle(booking, trip, cmd.VehicleID, categoryID, batch)
		if err != nil {
			return AssignResult{}, err
		}
		if driver == nil && vehicle == nil {
			return AssignResult{}, domain.Conflictf("no eligible driver or vehicle for trip %d", trip.ID)
		}

		batch.reserve(driver, vehicle, trip)
		planned = append(planned, plannedAssignment{trip: trip, driver: driver, vehicle: vehicle})
	}

	result := AssignResult{BookingID: booking.ID}
	assignedAt := s.now()
	for _, p := range planned {
		ta := TripAssignment{TripID: p.trip.ID}
		if p.driver != nil {
			if err := s.Assignments.BindDriver(models.TripDriver{
				TripID: p.trip.ID, DriverID: p.driver.ID, Note: cmd.Note, AssignedAt: assignedAt,
			}); err != nil {
				return AssignResult{}, err
			}
			id := p.driver.ID
			ta.DriverID = &id
		}
		if p.vehicle != nil {
			if err := s.Assignments.BindVehicle(models.TripVehicle{
				TripID: p.trip.ID, VehicleID: p.vehicle.ID, Note: cmd.Note, AssignedAt: assignedAt,
			}); err != nil {
				return AssignResult{}, err
			}
			id := p.vehicle.ID
			ta.VehicleID = &id
		}
		if p.trip.Status == domain.TripScheduled {
			done, err := s.tripFullyAssigned(p.trip.ID)
			if err != nil {
				return AssignResult{}, err
			}
			if done {
				if err := s.Trips.UpdateStatus(p.trip.ID, domain.TripAssigned); err != nil {
					return AssignResult{}, err
				}
			}
		}
		result.Assignments = append(result.Assignments, ta)
		if s.Log != nil {
			s.Log.Info("trip assigned",
				logger.Int64("bookingId", booking.ID),
				logger.Int64("tripId", p.trip.ID),
				logger.Any("driverId", ta.DriverID),
				logger.Any("vehicleId", ta.VehicleID))
		}
	}

	result.BookingStatus, err = s.promoteBooking(booking)
	if err != nil {
		return AssignResult{}, err
	}
	return result, nil
}

type plannedAssignment struct {
	trip    models.Trip
	driver  *models.Driver
	vehicle *models.Vehicle
}

// Unassign drops both bindings of a trip and returns it to SCHEDULED.
func (s DispatchService) Unassign(tripID int64) error {
	trip, err := s.Trips.Get(tripID)
	if err != nil {
		return err
	}
	if trip.Status == domain.TripOngoing || !trip.Status.Active() {
		return domain.Conflictf("trip %d is %s and cannot be unassigned", trip.ID, trip.Status)
	}
	if err := s.Assignments.UnbindTrip(tripID); err != nil {
		return err
	}
	if trip.Status != domain.TripScheduled {
		return s.Trips.UpdateStatus(tripID, domain.TripScheduled)
	}
	return nil
}

// Reassign swaps the resources of a single not-yet-departed trip.
func (s DispatchService) Reassign(tripID, driverID, vehicleID int64, note string) (AssignResult, error) {
	trip, err := s.Trips.Get(tripID)
	if err != nil {
		return AssignResult{}, err
	}
	if trip.Status == domain.TripOngoing || !trip.Status.Active() {
		return AssignResult{}, domain.Conflictf("trip %d is %s and cannot be reassigned", trip.ID, trip.Status)
	}
	if trip.StartTime != nil && trip.StartTime.Before(s.now()) {
		return AssignResult{}, domain.Conflictf("trip %d has already departed", trip.ID)
	}
	if err := s.Unassign(tripID); err != nil {
		return AssignResult{}, err
	}
	return s.Assign(AssignCommand{
		BookingID: trip.BookingID,
		TripIDs:   []int64{tripID},
		DriverID:  driverID,
		VehicleID: vehicleID,
		Note:      note,
	})
}

func (s DispatchService) targetTrips(bookingID int64, tripIDs []int64) ([]models.Trip, error) {
	trips, err := s.Trips.ListByBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if len(trips) == 0 {
		return nil, domain.Validationf("booking %d has no trips", bookingID)
	}
	if len(tripIDs) == 0 {
		return trips, nil
	}
	byID := make(map[int64]models.Trip, len(trips))
	for _, t := range trips {
		byID[t.ID] = t
	}
	var out []models.Trip
	for _, id := range tripIDs {
		t, ok := byID[id]
		if !ok {
			return nil, domain.Validationf("trip %d does not belong to booking %d", id, bookingID)
		}
		out = append(out, t)
	}
	return out, nil
}

// chooseDriver validates an explicit pick or scores the branch roster.
// An empty roster is not an error; the trip is left without a driver.
func (s DispatchService) chooseDriver(booking models.Booking, trip models.Trip, explicit int64, maxSeats int, batch *batchReservations) (*models.Driver, error) {
	if explicit > 0 {
		d, err := s.Fleet.GetDriver(explicit)
		if err != nil {
			return nil, err
		}
		if reason, ok, err := s.driverEligible(d, booking, trip, maxSeats, batch); err != nil {
			return nil, err
		} else if !ok {
			return nil, domain.Conflictf("driver %s unavailable: %s", d.FullName, reason)
		}
		return &d, nil
	}

	candidates, err := s.Fleet.BranchDrivers(booking.BranchID)
	if err != nil {
		return nil, err
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	var best *models.Driver
	bestScore := -1
	for _, d := range candidates {
		if _, ok, err := s.driverEligible(d, booking, trip, maxSeats, batch); err != nil {
			return nil, err
		} else if !ok {
			continue
		}
		score, err := s.workloadScore(d.ID, trip)
		if err != nil {
			return nil, err
		}
		if bestScore < 0 || score < bestScore {
			d := d
			best, bestScore = &d, score
		}
	}
	if best == nil && s.Log != nil {
		s.Log.Warn("no eligible driver",
			logger.Int64("bookingId", booking.ID),
			logger.Int64("tripId", trip.ID))
	}
	return best, nil
}

func (s DispatchService) driverEligible(d models.Driver, booking models.Booking, trip models.Trip, maxSeats int, batch *batchReservations) (string, bool, error) {
	if !d.Active {
		return "driver inactive", false, nil
	}
	if d.BranchID != booking.BranchID {
		return "wrong branch", false, nil
	}
	if trip.StartTime != nil {
		day := utils.TruncateToDay(*trip.StartTime)
		off, err := s.Fleet.HasApprovedDayOff(d.ID, day)
		if err != nil {
			return "", false, err
		}
		if off {
			return "approved day off", false, nil
		}
		if d.LicenseExpiry == nil || d.LicenseExpiry.Before(day) {
			return "license expired or unknown", false, nil
		}
	}
	if !licenseClassAllows(d.LicenseClass, maxSeats) {
		return "license class too low for vehicle size", false, nil
	}
	if batch.driverConflicts(d.ID, trip) {
		return "already picked for an overlapping trip", false, nil
	}

	bound, err := s.Trips.DriverTrips(d.ID)
	if err != nil {
		return "", false, err
	}
	for _, other := range bound {
		if other.BookingID == booking.ID {
			continue
		}
		if other.Status.Active() && other.Overlaps(trip) {
			return "overlapping trip", false, nil
		}
	}
	return "", true, nil
}

// workloadScore weighs how loaded a driver already is around the trip
// date. Only active trips count.
func (s DispatchService) workloadScore(driverID int64, trip models.Trip) (int, error) {
	if trip.StartTime == nil {
		return 0, nil
	}
	bound, err := s.Trips.DriverTrips(driverID)
	if err != nil {
		return 0, err
	}
	ref := *trip.StartTime
	score := 0
	for _, t := range bound {
		if !t.Status.Active() || t.StartTime == nil {
			continue
		}
		st := *t.StartTime
		if utils.SameDay(st, ref) {
			score += weightTripsToday
		}
		if utils.SameISOWeek(st, ref) {
			score += weightTripsThisWeek
		}
		if d := ref.Sub(st); d >= 0 && d <= 72*time.Hour {
			score += weightTripsLast3Days
		}
	}
	return score, nil
}

// chooseVehicle validates an explicit pick or takes the first free
// vehicle of the required category, lowest id first. No free vehicle
// is not an error; the trip is left without one.
func (s DispatchService) chooseVehicle(booking models.Booking, trip models.Trip, explicit, categoryID int64, batch *batchReservations) (*models.Vehicle, error) {
	if explicit > 0 {
		v, err := s.Fleet.GetVehicle(explicit)
		if err != nil {
			return nil, err
		}
		if reason, ok, err := s.vehicleEligible(v, booking, trip, categoryID, batch); err != nil {
			return nil, err
		} else if !ok {
			return nil, domain.Conflictf("vehicle %s unavailable: %s", v.LicensePlate, reason)
		}
		return &v, nil
	}

	candidates, err := s.Fleet.AvailableVehicles(booking.BranchID, categoryID)
	if err != nil {
		return nil, err
	}
	for _, v := range candidates {
		if _, ok, err := s.vehicleEligible(v, booking, trip, categoryID, batch); err != nil {
			return nil, err
		} else if ok {
			v := v
			return &v, nil
		}
	}
	if s.Log != nil {
		s.Log.Warn("no eligible vehicle",
			logger.Int64("bookingId", booking.ID),
			logger.Int64("tripId", trip.ID))
	}
	return nil, nil
}

func (s DispatchService) vehicleEligible(v models.Vehicle, booking models.Booking, trip models.Trip, categoryID int64, batch *batchReservations) (string, bool, error) {
	if v.Status != domain.VehicleAvailable {
		return "not available", false, nil
	}
	if v.BranchID != booking.BranchID {
		return "wrong branch", false, nil
	}
	if categoryID > 0 && v.CategoryID != categoryID {
		return "wrong category", false, nil
	}
	if batch.vehicleConflicts(v.ID, trip) {
		return "already picked for an overlapping trip", false, nil
	}

	bound, err := s.Trips.VehicleTrips(v.ID)
	if err != nil {
		return "", false, err
	}
	for _, other := range bound {
		if other.ID == trip.ID {
			continue
		}
		if !other.Status.Active() {
			continue
		}
		// A vehicle serves at most one trip of a booking.
		if other.BookingID == booking.ID {
			return "already serving another trip of this booking", false, nil
		}
		if other.Overlaps(trip) {
			return "overlapping trip", false, nil
		}
	}
	return "", true, nil
}

// promoteBooking moves the booking to ASSIGNED once every trip holds
// both bindings.
func (s DispatchService) promoteBooking(booking models.Booking) (domain.BookingStatus, error) {
	switch booking.Status {
	case domain.BookingAssigned, domain.BookingInProgress, domain.BookingCompleted, domain.BookingCancelled:
		return booking.Status, nil
	}
	trips, err := s.Trips.ListByBooking(booking.ID)
	if err != nil {
		return booking.Status, err
	}
	for _, t := range trips {
		done, err := s.tripFullyAssigned(t.ID)
		if err != nil {
			return booking.Status, err
		}
		if !done {
			return booking.Status, nil
		}
	}
	if err := s.Bookings.UpdateStatus(booking.ID, domain.BookingAssigned); err != nil {
		return booking.Status, err
	}
	return domain.BookingAssigned, nil
}

func (s DispatchService) tripFullyAssigned(tripID int64) (bool, error) {
	d, err := s.Assignments.TripDriver(tripID)
	if err != nil {
		return false, err
	}
	if d == nil {
		return false, nil
	}
	v, err := s.Assignments.TripVehicle(tripID)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

func (s DispatchService) maxSeats(bookingID int64) (int, error) {
	details, err := s.Bookings.VehicleDetails(bookingID)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, d := range details {
		rate, err := s.Rates.Get(d.CategoryID)
		if err != nil {
			return 0, err
		}
		if rate.Seats > max {
			max = rate.Seats
		}
	}
	return max, nil
}

// singleCategory returns the category to filter vehicles by: the line's
// category when the booking has exactly one line, 0 otherwise.
func (s DispatchService) singleCategory(bookingID int64) (int64, error) {
	details, err := s.Bookings.VehicleDetails(bookingID)
	if err != nil {
		return 0, err
	}
	if len(details) == 1 {
		return details[0].CategoryID, nil
	}
	return 0, nil
}

// licenseClassAllows maps license classes to the largest passenger
// vehicle they cover. Unknown seat counts pass; unknown classes fail.
func licenseClassAllows(class string, seats int) bool {
	if seats <= 0 {
		return true
	}
	switch c := strings.ToUpper(strings.TrimSpace(class)); {
	case c == "":
		return false
	case c == "E" || strings.HasPrefix(c, "F"):
		return true
	case c == "D":
		return seats <= 30
	case c == "B" || c == "B1" || c == "B2" || c == "C":
		return seats <= 9
	default:
		return false
	}
}

// batchReservations tracks picks made earlier in the same command so
// one resource is never double-booked within a single Assign call.
type batchReservations struct {
	drivers  map[int64][]models.Trip
	vehicles map[int64][]models.Trip
}

func newBatchReservations() *batchReservations {
	return &batchReservations{
		drivers:  make(map[int64][]models.Trip),
		vehicles: make(map[int64][]models.Trip),
	}
}

func (b *batchReservations) reserve(driver *models.Driver, vehicle *models.Vehicle, trip models.Trip) {
	if driver != nil {
		b.drivers[driver.ID] = append(b.drivers[driver.ID], trip)
	}
	if vehicle != nil {
		b.vehicles[vehicle.ID] = append(b.vehicles[vehicle.ID], trip)
	}
}

func (b *batchReservations) driverConflicts(driverID int64, trip models.Trip) bool {
	for _, t := range b.drivers[driverID] {
		if t.Overlaps(trip) {
			return true
		}
	}
	return false
}

// A command covers one booking and a vehicle serves at most one trip
// per booking, so any reuse within the batch conflicts.
func (b *batchReservations) vehicleConflicts(vehicleID int64, _ models.Trip) bool {
	return len(b.vehicles[vehicleID]) > 0
}
