package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
)

// memStore holds all fixture data for the service tests. The mem*
// adapters below expose it through the store interfaces.
type memStore struct {
	nextID int64

	bookings     map[int64]models.Booking
	details      map[int64][]models.VehicleDetail
	trips        map[int64]models.Trip
	tripDrivers  map[int64]models.TripDriver
	tripVehicles map[int64]models.TripVehicle

	branches  map[int64]models.Branch
	customers map[int64]models.Customer
	vehicles  map[int64]models.Vehicle
	drivers   map[int64]models.Driver
	dayOffs   []models.DriverDayOff
	rates     map[int64]models.CategoryRate

	invoices []models.Invoice
	settings map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		bookings:     map[int64]models.Booking{},
		details:      map[int64][]models.VehicleDetail{},
		trips:        map[int64]models.Trip{},
		tripDrivers:  map[int64]models.TripDriver{},
		tripVehicles: map[int64]models.TripVehicle{},
		branches:     map[int64]models.Branch{},
		customers:    map[int64]models.Customer{},
		vehicles:     map[int64]models.Vehicle{},
		drivers:      map[int64]models.Driver{},
		rates:        map[int64]models.CategoryRate{},
		settings:     map[string]string{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addTrip(t models.Trip) models.Trip {
	t.ID = m.id()
	m.trips[t.ID] = t
	return t
}

func (m *memStore) addBooking(b models.Booking) models.Booking {
	b.ID = m.id()
	m.bookings[b.ID] = b
	return b
}

// GetValue implements SettingStore directly on the fixture.
func (m *memStore) GetValue(key string) (string, bool, error) {
	v, ok := m.settings[key]
	return v, ok, nil
}

type memBookings struct{ s *memStore }

func (m memBookings) Get(id int64) (models.Booking, error) {
	b, ok := m.s.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundf("booking %d not found", id)
	}
	return b, nil
}

func (m memBookings) List(branchID int64, status string, limit, offset int) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range m.s.bookings {
		if branchID > 0 && b.BranchID != branchID {
			continue
		}
		if status != "" && string(b.Status) != status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memBookings) Insert(b models.Booking, details []models.VehicleDetail, trips []models.Trip) (int64, error) {
	b = m.s.addBooking(b)
	stored := make([]models.VehicleDetail, len(details))
	for i, d := range details {
		d.ID = m.s.id()
		d.BookingID = b.ID
		stored[i] = d
	}
	m.s.details[b.ID] = stored
	for _, t := range trips {
		t.BookingID = b.ID
		m.s.addTrip(t)
	}
	return b.ID, nil
}

func (m memBookings) Update(b models.Booking, details []models.VehicleDetail, trips []models.Trip) error {
	if _, ok := m.s.bookings[b.ID]; !ok {
		return domain.NotFoundf("booking %d not found", b.ID)
	}
	m.s.bookings[b.ID] = b
	if details != nil {
		stored := make([]models.VehicleDetail, len(details))
		for i, d := range details {
			d.ID = m.s.id()
			d.BookingID = b.ID
			stored[i] = d
		}
		m.s.details[b.ID] = stored
	}
	if trips != nil {
		for id, t := range m.s.trips {
			if t.BookingID == b.ID {
				delete(m.s.trips, id)
			}
		}
		for _, t := range trips {
			t.BookingID = b.ID
			m.s.addTrip(t)
		}
	}
	return nil
}

func (m memBookings) UpdateStatus(id int64, status domain.BookingStatus) error {
	b, ok := m.s.bookings[id]
	if !ok {
		return domain.NotFoundf("booking %d not found", id)
	}
	b.Status = status
	m.s.bookings[id] = b
	return nil
}

func (m memBookings) VehicleDetails(bookingID int64) ([]models.VehicleDetail, error) {
	return m.s.details[bookingID], nil
}

type memTrips struct{ s *memStore }

func (m memTrips) Get(id int64) (models.Trip, error) {
	t, ok := m.s.trips[id]
	if !ok {
		return models.Trip{}, domain.NotFoundf("trip %d not found", id)
	}
	return t, nil
}

func (m memTrips) ListByBooking(bookingID int64) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range m.s.trips {
		if t.BookingID == bookingID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memTrips) UpdateStatus(id int64, status domain.TripStatus) error {
	t, ok := m.s.trips[id]
	if !ok {
		return domain.NotFoundf("trip %d not found", id)
	}
	t.Status = status
	m.s.trips[id] = t
	return nil
}

func (m memTrips) DriverTrips(driverID int64) ([]models.Trip, error) {
	var out []models.Trip
	for tripID, b := range m.s.tripDrivers {
		if b.DriverID == driverID {
			if t, ok := m.s.trips[tripID]; ok {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (m memTrips) VehicleTrips(vehicleID int64) ([]models.Trip, error) {
	var out []models.Trip
	for tripID, b := range m.s.tripVehicles {
		if b.VehicleID == vehicleID {
			if t, ok := m.s.trips[tripID]; ok {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

type memAssignments struct{ s *memStore }

func (m memAssignments) TripDriver(tripID int64) (*models.TripDriver, error) {
	b, ok := m.s.tripDrivers[tripID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m memAssignments) TripVehicle(tripID int64) (*models.TripVehicle, error) {
	b, ok := m.s.tripVehicles[tripID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m memAssignments) BindDriver(b models.TripDriver) error {
	b.ID = m.s.id()
	m.s.tripDrivers[b.TripID] = b
	return nil
}

func (m memAssignments) BindVehicle(b models.TripVehicle) error {
	b.ID = m.s.id()
	m.s.tripVehicles[b.TripID] = b
	return nil
}

func (m memAssignments) UnbindTrip(tripID int64) error {
	delete(m.s.tripDrivers, tripID)
	delete(m.s.tripVehicles, tripID)
	return nil
}

type memFleet struct{ s *memStore }

func (m memFleet) GetBranch(id int64) (models.Branch, error) {
	b, ok := m.s.branches[id]
	if !ok {
		return models.Branch{}, domain.NotFoundf("branch %d not found", id)
	}
	return b, nil
}

func (m memFleet) AvailableVehicles(branchID, categoryID int64) ([]models.Vehicle, error) {
	var out []models.Vehicle
	for _, v := range m.s.vehicles {
		if v.BranchID != branchID || v.Status != domain.VehicleAvailable {
			continue
		}
		if categoryID > 0 && v.CategoryID != categoryID {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memFleet) GetVehicle(id int64) (models.Vehicle, error) {
	v, ok := m.s.vehicles[id]
	if !ok {
		return models.Vehicle{}, domain.NotFoundf("vehicle %d not found", id)
	}
	return v, nil
}

func (m memFleet) BranchDrivers(branchID int64) ([]models.Driver, error) {
	var out []models.Driver
	for _, d := range m.s.drivers {
		if d.BranchID == branchID && d.Active {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memFleet) GetDriver(id int64) (models.Driver, error) {
	d, ok := m.s.drivers[id]
	if !ok {
		return models.Driver{}, domain.NotFoundf("driver %d not found", id)
	}
	return d, nil
}

func (m memFleet) HasApprovedDayOff(driverID int64, day time.Time) (bool, error) {
	for _, off := range m.s.dayOffs {
		if off.DriverID == driverID && off.Status == domain.DayOffApproved && off.Covers(day) {
			return true, nil
		}
	}
	return false, nil
}

type memRates struct{ s *memStore }

func (m memRates) Get(id int64) (models.CategoryRate, error) {
	r, ok := m.s.rates[id]
	if !ok {
		return models.CategoryRate{}, domain.NotFoundf("vehicle category %d not found", id)
	}
	return r, nil
}

func (m memRates) ListActive() ([]models.CategoryRate, error) {
	var out []models.CategoryRate
	for _, r := range m.s.rates {
		if r.Active {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seats != out[j].Seats {
			return out[i].Seats < out[j].Seats
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type memInvoices struct{ s *memStore }

func (m memInvoices) Insert(inv models.Invoice) (int64, error) {
	inv.ID = m.s.id()
	m.s.invoices = append(m.s.invoices, inv)
	return inv.ID, nil
}

func (m memInvoices) ListByBooking(bookingID int64) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range m.s.invoices {
		if inv.BookingID == bookingID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m memInvoices) ConfirmedPaidAmount(bookingID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, inv := range m.s.invoices {
		if inv.BookingID == bookingID && inv.Status == models.InvoiceConfirmed &&
			(inv.Kind == models.InvoiceDeposit || inv.Kind == models.InvoicePayment) {
			sum = sum.Add(inv.Amount)
		}
	}
	return sum, nil
}

type memCustomers struct{ s *memStore }

func (m memCustomers) Get(id int64) (models.Customer, error) {
	c, ok := m.s.customers[id]
	if !ok {
		return models.Customer{}, domain.NotFoundf("customer %d not found", id)
	}
	return c, nil
}

var (
	_ BookingStore    = memBookings{}
	_ TripStore       = memTrips{}
	_ AssignmentStore = memAssignments{}
	_ FleetStore      = memFleet{}
	_ RateStore       = memRates{}
	_ InvoiceStore    = memInvoices{}
	_ CustomerStore   = memCustomers{}
	_ SettingStore    = (*memStore)(nil)
)
