package repositories

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
)

type InvoiceRepo struct {
	DB *sql.DB
}

func (r InvoiceRepo) Insert(inv models.Invoice) (int64, error) {
	res, err := r.DB.Exec(`INSERT INTO invoices (booking_id, kind, amount, status, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		inv.BookingID, inv.Kind, inv.Amount, inv.Status, inv.Note, inv.CreatedAt)
	if err != nil {
		return 0, domain.Internal("insert invoice", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.Internal("insert invoice", err)
	}
	return id, nil
}

func (r InvoiceRepo) ListByBooking(bookingID int64) ([]models.Invoice, error) {
	rows, err := r.DB.Query(`SELECT id, booking_id, kind, amount, status, note, created_at
		FROM invoices WHERE booking_id = ? ORDER BY id`, bookingID)
	if err != nil {
		return nil, domain.Internal("list invoices", err)
	}
	defer rows.Close()

	var out []models.Invoice
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(&inv.ID, &inv.BookingID, &inv.Kind, &inv.Amount,
			&inv.Status, &inv.Note, &inv.CreatedAt); err != nil {
			return nil, domain.Internal("scan invoice", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// ConfirmedPaidAmount sums confirmed deposits and payments, the figure
// dispatch checks before allowing an assignment.
func (r InvoiceRepo) ConfirmedPaidAmount(bookingID int64) (decimal.Decimal, error) {
	var raw sql.NullString
	err := r.DB.QueryRow(`SELECT COALESCE(SUM(amount), 0) FROM invoices
		WHERE booking_id = ? AND status = ? AND kind IN (?, ?)`,
		bookingID, models.InvoiceConfirmed, models.InvoiceDeposit, models.InvoicePayment).Scan(&raw)
	if err != nil {
		return decimal.Zero, domain.Internal("sum paid amount", err)
	}
	if !raw.Valid || raw.String == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw.String)
	if err != nil {
		return decimal.Zero, domain.Internal("parse paid amount", err)
	}
	return d, nil
}
