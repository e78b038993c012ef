package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"fleetbook/internal/domain"
)

// WorkOrderService renders the printable work order handed to the
// driver before departure.
type WorkOrderService struct {
	Bookings    BookingStore
	Trips       TripStore
	Assignments AssignmentStore
	Fleet       FleetStore
	Customers   CustomerStore
}

// BuildPDF renders the work order for one assigned trip.
func (s WorkOrderService) BuildPDF(tripID int64) ([]byte, error) {
	trip, err := s.Trips.Get(tripID)
	if err != nil {
		return nil, err
	}
	booking, err := s.Bookings.Get(trip.BookingID)
	if err != nil {
		return nil, err
	}
	customer, err := s.Customers.Get(booking.CustomerID)
	if err != nil {
		return nil, err
	}

	db, err := s.Assignments.TripDriver(tripID)
	if err != nil {
		return nil, err
	}
	vb, err := s.Assignments.TripVehicle(tripID)
	if err != nil {
		return nil, err
	}
	if db == nil || vb == nil {
		return nil, domain.Conflictf("trip %d has no full assignment yet", tripID)
	}
	driver, err := s.Fleet.GetDriver(db.DriverID)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.Fleet.GetVehicle(vb.VehicleID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "WORK ORDER")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	line := func(label, value string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(45, 7, label)
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(0, 7, value)
		pdf.Ln(7)
	}

	line("Booking", booking.Code)
	line("Trip", fmt.Sprintf("#%d (%s)", trip.ID, trip.Status))
	line("Customer", customer.FullName)
	line("Phone", customer.Phone)
	pdf.Ln(3)

	line("Driver", driver.FullName)
	line("License", fmt.Sprintf("%s (%s)", driver.LicenseNumber, driver.LicenseClass))
	line("Vehicle", vehicle.LicensePlate)
	pdf.Ln(3)

	line("From", trip.StartLocation)
	line("To", trip.EndLocation)
	line("Departure", formatTime(trip.StartTime))
	line("Return", formatTime(trip.EndTime))
	line("Distance", fmt.Sprintf("%.1f km", trip.DistanceKm))
	if db.Note != "" {
		pdf.Ln(3)
		line("Note", db.Note)
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Issued %s", time.Now().UTC().Format("2006-01-02 15:04 MST")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, domain.Internal("render work order", err)
	}
	return buf.Bytes(), nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
