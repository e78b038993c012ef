package services

import (
	"time"

	"github.com/shopspring/decimal"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
)

// Store interfaces consumed by the services. The sql repositories in
// internal/repositories satisfy them; tests use in-memory fakes.

type BookingStore interface {
	Get(id int64) (models.Booking, error)
	List(branchID int64, status string, limit, offset int) ([]models.Booking, error)
	Insert(b models.Booking, details []models.VehicleDetail, trips []models.Trip) (int64, error)
	Update(b models.Booking, details []models.VehicleDetail, trips []models.Trip) error
	UpdateStatus(id int64, status domain.BookingStatus) error
	VehicleDetails(bookingID int64) ([]models.VehicleDetail, error)
}

type TripStore interface {
	Get(id int64) (models.Trip, error)
	ListByBooking(bookingID int64) ([]models.Trip, error)
	UpdateStatus(id int64, status domain.TripStatus) error
	DriverTrips(driverID int64) ([]models.Trip, error)
	VehicleTrips(vehicleID int64) ([]models.Trip, error)
}

type AssignmentStore interface {
	TripDriver(tripID int64) (*models.TripDriver, error)
	TripVehicle(tripID int64) (*models.TripVehicle, error)
	BindDriver(b models.TripDriver) error
	BindVehicle(b models.TripVehicle) error
	UnbindTrip(tripID int64) error
}

type FleetStore interface {
	GetBranch(id int64) (models.Branch, error)
	AvailableVehicles(branchID, categoryID int64) ([]models.Vehicle, error)
	GetVehicle(id int64) (models.Vehicle, error)
	BranchDrivers(branchID int64) ([]models.Driver, error)
	GetDriver(id int64) (models.Driver, error)
	HasApprovedDayOff(driverID int64, day time.Time) (bool, error)
}

type RateStore interface {
	Get(id int64) (models.CategoryRate, error)
	ListActive() ([]models.CategoryRate, error)
}

type SettingStore interface {
	GetValue(key string) (string, bool, error)
}

type InvoiceStore interface {
	Insert(inv models.Invoice) (int64, error)
	ListByBooking(bookingID int64) ([]models.Invoice, error)
	ConfirmedPaidAmount(bookingID int64) (decimal.Decimal, error)
}

type CustomerStore interface {
	Get(id int64) (models.Customer, error)
}
