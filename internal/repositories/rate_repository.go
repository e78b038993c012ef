package repositories

import (
	"database/sql"
	"errors"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
)

type RateRepo struct {
	DB *sql.DB
}

const rateColumns = `id, name, seats, base_fare, price_per_km, highway_fee,
same_day_fixed_price, is_premium, premium_surcharge, active`

func scanRate(row interface{ Scan(...any) error }) (models.CategoryRate, error) {
	var c models.CategoryRate
	err := row.Scan(&c.ID, &c.Name, &c.Seats, &c.BaseFare, &c.PricePerKm,
		&c.HighwayFee, &c.SameDayFixedPrice, &c.IsPremium, &c.PremiumSurcharge, &c.Active)
	return c, err
}

func (r RateRepo) Get(id int64) (models.CategoryRate, error) {
	row := r.DB.QueryRow(`SELECT `+rateColumns+` FROM vehicle_categories WHERE id = ?`, id)
	c, err := scanRate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CategoryRate{}, domain.NotFoundf("vehicle category %d not found", id)
	}
	if err != nil {
		return models.CategoryRate{}, domain.Internal("get vehicle category", err)
	}
	return c, nil
}

// ListActive returns ACTIVE categories ordered by seats ascending,
// the order alternative suggestions are presented in.
func (r RateRepo) ListActive() ([]models.CategoryRate, error) {
	rows, err := r.DB.Query(`SELECT ` + rateColumns + ` FROM vehicle_categories
		WHERE active = 1 ORDER BY seats, id`)
	if err != nil {
		return nil, domain.Internal("list vehicle categories", err)
	}
	defer rows.Close()

	var out []models.CategoryRate
	for rows.Next() {
		c, err := scanRate(rows)
		if err != nil {
			return nil, domain.Internal("scan vehicle category", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
