package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
	"fleetbook/internal/pkg/logger"
)

var dispatchNow = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

type dispatchFixture struct {
	s   *memStore
	svc DispatchService
}

func newDispatchFixture() *dispatchFixture {
	s := newMemStore()
	s.branches[1] = models.Branch{ID: 1, Name: "Central", Active: true}
	s.customers[1] = models.Customer{ID: 1, FullName: "Lan Pham"}
	s.rates[1] = models.CategoryRate{ID: 1, Name: "Sedan 4", Seats: 4,
		BaseFare: decimal.NewFromInt(500000), Active: true}

	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s.drivers[1] = models.Driver{ID: 1, BranchID: 1, FullName: "Minh Tran", LicenseClass: "B2", LicenseExpiry: &expiry, Active: true}
	s.drivers[2] = models.Driver{ID: 2, BranchID: 1, FullName: "Hoa Nguyen", LicenseClass: "B2", LicenseExpiry: &expiry, Active: true}

	s.vehicles[1] = models.Vehicle{ID: 1, BranchID: 1, CategoryID: 1, LicensePlate: "29A-00001", Status: domain.VehicleAvailable}
	s.vehicles[2] = models.Vehicle{ID: 2, BranchID: 1, CategoryID: 1, LicensePlate: "29A-00002", Status: domain.VehicleAvailable}

	svc := DispatchService{
		Bookings:    memBookings{s},
		Trips:       memTrips{s},
		Fleet:       memFleet{s},
		Assignments: memAssignments{s},
		Invoices:    memInvoices{s},
		Rates:       memRates{s},
		Settings:    &Settings{Store: s, Log: logger.Nop()},
		Log:         logger.Nop(),
		Now:         func() time.Time { return dispatchNow },
	}
	return &dispatchFixture{s: s, svc: svc}
}

// seedBooking creates a confirmed, deposit-paid booking with the given
// number of identical trips starting tomorrow.
func (f *dispatchFixture) seedBooking(tripCount int) (models.Booking, []models.Trip) {
	deposit := decimal.NewFromInt(500000)
	b := f.s.addBooking(models.Booking{
		Code:          "BK-TEST01",
		CustomerID:    1,
		BranchID:      1,
		DepositAmount: deposit,
		Status:        domain.BookingConfirmed,
	})
	f.s.details[b.ID] = []models.VehicleDetail{{BookingID: b.ID, CategoryID: 1, Quantity: tripCount}}
	f.s.invoices = append(f.s.invoices, models.Invoice{
		BookingID: b.ID, Kind: models.InvoiceDeposit, Amount: deposit, Status: models.InvoiceConfirmed,
	})

	start := dispatchNow.Add(24 * time.Hour)
	end := start.Add(6 * time.Hour)
	var trips []models.Trip
	for i := 0; i < tripCount; i++ {
		trips = append(trips, f.s.addTrip(models.Trip{
			BookingID: b.ID,
			StartTime: tp(start),
			EndTime:   tp(end),
			DistanceKm: 80,
			Status:     domain.TripScheduled,
		}))
	}
	return b, trips
}

func idOf(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func TestAssignAutoPicksAndPromotes(t *testing.T) {
	f := newDispatchFixture()
	b, trips := f.seedBooking(1)

	res, err := f.svc.Assign(AssignCommand{BookingID: b.ID})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if len(res.Assignments) != 1 {
		t.Fatalf("assignments = %+v, want one", res.Assignments)
	}
	// Deterministic: lowest ids win on a fresh fleet.
	if idOf(res.Assignments[0].DriverID) != 1 || idOf(res.Assignments[0].VehicleID) != 1 {
		t.Errorf("picked driver %d vehicle %d, want 1 and 1",
			idOf(res.Assignments[0].DriverID), idOf(res.Assignments[0].VehicleID))
	}
	if res.BookingStatus != domain.BookingAssigned {
		t.Errorf("booking status = %s, want ASSIGNED", res.BookingStatus)
	}
	got, _ := f.s.trips[trips[0].ID]
	if got.Status != domain.TripAssigned {
		t.Errorf("trip status = %s, want ASSIGNED", got.Status)
	}
}

func TestAssignMultipleTripsUsesDistinctResources(t *testing.T) {
	f := newDispatchFixture()
	b, _ := f.seedBooking(2)

	res, err := f.svc.Assign(AssignCommand{BookingID: b.ID})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if len(res.Assignments) != 2 {
		t.Fatalf("assignments = %+v, want two", res.Assignments)
	}
	a, b2 := res.Assignments[0], res.Assignments[1]
	if idOf(a.DriverID) == idOf(b2.DriverID) {
		t.Errorf("same driver %d assigned to two overlapping trips", idOf(a.DriverID))
	}
	if idOf(a.VehicleID) == idOf(b2.VehicleID) {
		t.Errorf("same vehicle %d assigned to two trips of one booking", idOf(a.VehicleID))
	}
}

func TestAssignRequiresDeposit(t *testing.T) {
	f := newDispatchFixture()
	b, _ := f.seedBooking(1)
	f.s.invoices = nil // wipe the payment

	_, err := f.svc.Assign(AssignCommand{BookingID: b.ID})
	if !domain.IsConflict(err) {
		t.Errorf("err = %v, want conflict on unpaid deposit", err)
	}
}

func TestAssignSkipsDriverOnDayOff(t *testing.T) {
	f := newDispatchFixture()
	b, _ := f.seedBooking(1)

	tripDay := dispatchNow.Add(24 * time.Hour)
	f.s.dayOffs = append(f.s.dayOffs, models.DriverDayOff{
		DriverID:  1,
		StartDate: tripDay.Add(-12 * time.Hour),
		EndDate:   tripDay.Add(12 * time.Hour),
		Status:    domain.DayOffApproved,
	})

	res, err := f.svc.Assign(AssignCommand{BookingID: b.ID})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if idOf(res.Assignments[0].DriverID) != 2 {
		t.Errorf("picked driver %d, want 2 (driver 1 is on leave)", idOf(res.Assignments[0].DriverID))
	}
}

func TestAssignSkipsExpiredLicense(t *testing.T) {
	f := newDispatchFixture()
	b, _ := f.seedBooking(1)

	expired := dispatchNow.Add(-24 * time.Hour)
	d := f.s.drivers[1]
	d.LicenseExpiry = &expired
	f.s.drivers[1] = d

	res, err := f.svc.Assign(AssignCommand{BookingID: b.ID})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if idOf(res.Assignments[0].DriverID) != 2 {
		t.Errorf("picked driver %d, want 2 (driver 1 license expired)", idOf(res.Assignments[0].DriverID))
	}
}

func TestAssignPrefersLessLoadedDriver(t *testing.T) {
	f := newDispatchFixture()
	b, _ := f.seedBooking(1)

	// Driver 1 already has a non-overlapping trip the same day.
	busyStart := dispatchNow.Add(26 * time.Hour).Add(8 * time.Hour)
	other := f.s.addTrip(models.Trip{
		BookingID: 777,
		StartTime: tp(busyStart),
		EndTime:   tp(busyStart.Add(2 * time.Hour)),
		Status:    domain.TripAssigned,
	})
	f.s.tripDrivers[other.ID] = models.TripDriver{TripID: other.ID, DriverID: 1}

	res, err := f.svc.Assign(AssignCommand{BookingID: b.ID})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if idOf(res.Assignments[0].DriverID) != 2 {
		t.Errorf("picked driver %d, want the idle driver 2", idOf(res.Assignments[0].DriverID))
	}
}

func TestAssignWithoutDriversStillBindsVehicle(t *testing.T) {
	f := newDispatchFixture()
	b, trips := f.seedBooking(1)
	f.s.drivers = map[int64]models.Driver{}

	res, err := f.svc.Assign(AssignCommand{BookingID: b.ID})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if res.Assignments[0].DriverID != nil {
		t.Errorf("driver = %d, want none with an empty roster", idOf(res.Assignments[0].DriverID))
	}
	if idOf(res.Assignments[0].VehicleID) != 1 {
		t.Errorf("vehicle = %d, want 1 bound despite the missing driver", idOf(res.Assignments[0].VehicleID))
	}
	if _, ok := f.s.tripVehicles[trips[0].ID]; !ok {
		t.Errorf("vehicle binding should be written")
	}
	if got := f.s.trips[trips[0].ID].Status; got != domain.TripScheduled {
		t.Errorf("trip status = %s, want SCHEDULED until fully crewed", got)
	}
	if res.BookingStatus != domain.BookingConfirmed {
		t.Errorf("booking status = %s, want CONFIRMED until fully assigned", res.BookingStatus)
	}
}

func TestAssignFailsWhenNothingResolves(t *testing.T) {
	f := newDispatchFixture()
	b, _ := f.seedBooking(1)
	f.s.drivers = map[int64]models.Driver{}
	f.s.vehicles = map[int64]models.Vehicle{}

	_, err := f.svc.Assign(AssignCommand{BookingID: b.ID})
	if !domain.IsConflict(err) {
		t.Errorf("err = %v, want conflict when neither role resolves", err)
	}
}

func TestAssignRejectsOverlappingExplicitDriver(t *testing.T) {
	f := newDispatchFixture()
	b, trips := f.seedBooking(1)

	other := f.s.addTrip(models.Trip{
		BookingID: 777,
		StartTime: trips[0].StartTime,
		EndTime:   trips[0].EndTime,
		Status:    domain.TripAssigned,
	})
	f.s.tripDrivers[other.ID] = models.TripDriver{TripID: other.ID, DriverID: 1}

	_, err := f.svc.Assign(AssignCommand{BookingID: b.ID, DriverID: 1})
	if !domain.IsConflict(err) {
		t.Errorf("err = %v, want conflict for busy driver", err)
	}
}

func TestAssignIsIdempotentPerTrip(t *testing.T) {
	f := newDispatchFixture()
	b, trips := f.seedBooking(1)

	if _, err := f.svc.Assign(AssignCommand{BookingID: b.ID, DriverID: 1, VehicleID: 1}); err != nil {
		t.Fatalf("first Assign: %v", err)
	}
	if _, err := f.svc.Assign(AssignCommand{BookingID: b.ID, DriverID: 1, VehicleID: 1, Note: "again"}); err != nil {
		t.Fatalf("second Assign: %v", err)
	}

	binding := f.s.tripDrivers[trips[0].ID]
	if binding.DriverID != 1 || binding.Note != "again" {
		t.Errorf("binding = %+v, want same driver with refreshed note", binding)
	}
}

func TestAssignRejectsTerminalBooking(t *testing.T) {
	f := newDispatchFixture()
	b, _ := f.seedBooking(1)
	_ = memBookings{f.s}.UpdateStatus(b.ID, domain.BookingCancelled)

	_, err := f.svc.Assign(AssignCommand{BookingID: b.ID})
	if !domain.IsConflict(err) {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestUnassignReturnsTripToScheduled(t *testing.T) {
	f := newDispatchFixture()
	b, trips := f.seedBooking(1)

	if _, err := f.svc.Assign(AssignCommand{BookingID: b.ID}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := f.svc.Unassign(trips[0].ID); err != nil {
		t.Fatalf("Unassign: %v", err)
	}

	if f.s.trips[trips[0].ID].Status != domain.TripScheduled {
		t.Errorf("trip status = %s, want SCHEDULED", f.s.trips[trips[0].ID].Status)
	}
	if _, ok := f.s.tripDrivers[trips[0].ID]; ok {
		t.Errorf("driver binding should be gone")
	}
	if _, ok := f.s.tripVehicles[trips[0].ID]; ok {
		t.Errorf("vehicle binding should be gone")
	}
}

func TestUnassignRejectsOngoingTrip(t *testing.T) {
	f := newDispatchFixture()
	_, trips := f.seedBooking(1)
	_ = memTrips{f.s}.UpdateStatus(trips[0].ID, domain.TripOngoing)

	if err := f.svc.Unassign(trips[0].ID); !domain.IsConflict(err) {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestReassignSwapsResources(t *testing.T) {
	f := newDispatchFixture()
	b, trips := f.seedBooking(1)

	if _, err := f.svc.Assign(AssignCommand{BookingID: b.ID, DriverID: 1, VehicleID: 1}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	res, err := f.svc.Reassign(trips[0].ID, 2, 2, "driver sick")
	if err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if idOf(res.Assignments[0].DriverID) != 2 || idOf(res.Assignments[0].VehicleID) != 2 {
		t.Errorf("reassigned to driver %d vehicle %d, want 2 and 2",
			idOf(res.Assignments[0].DriverID), idOf(res.Assignments[0].VehicleID))
	}
}

func TestReassignRejectsDepartedTrip(t *testing.T) {
	f := newDispatchFixture()
	b, trips := f.seedBooking(1)
	if _, err := f.svc.Assign(AssignCommand{BookingID: b.ID}); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	past := dispatchNow.Add(-time.Hour)
	trip := f.s.trips[trips[0].ID]
	trip.StartTime = &past
	f.s.trips[trips[0].ID] = trip

	if _, err := f.svc.Reassign(trips[0].ID, 2, 2, ""); !domain.IsConflict(err) {
		t.Errorf("err = %v, want conflict for departed trip", err)
	}
}

func TestPendingBookingsListsUnassigned(t *testing.T) {
	f := newDispatchFixture()
	b1, _ := f.seedBooking(1)
	b2, _ := f.seedBooking(1)

	if _, err := f.svc.Assign(AssignCommand{BookingID: b2.ID}); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	pending, err := f.svc.PendingBookings(1)
	if err != nil {
		t.Fatalf("PendingBookings: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != b1.ID {
		t.Errorf("pending = %+v, want only booking %d", pending, b1.ID)
	}
}

func TestLicenseClassAllows(t *testing.T) {
	cases := []struct {
		class string
		seats int
		want  bool
	}{
		{"B2", 4, true},
		{"B2", 16, false},
		{"D", 30, true},
		{"D", 45, false},
		{"E", 45, true},
		{"FC", 45, true},
		{"", 4, false},
		{"A1", 4, false},
		{"B2", 0, true},
	}
	for _, tc := range cases {
		if got := licenseClassAllows(tc.class, tc.seats); got != tc.want {
			t.Errorf("licenseClassAllows(%q, %d) = %v, want %v", tc.class, tc.seats, got, tc.want)
		}
	}
}
