package repositories

import (
	"database/sql"
	"errors"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
)

type CustomerRepo struct {
	DB *sql.DB
}

func (r CustomerRepo) Get(id int64) (models.Customer, error) {
	row := r.DB.QueryRow(`SELECT id, full_name, phone, email, address FROM customers WHERE id = ?`, id)
	var c models.Customer
	err := row.Scan(&c.ID, &c.FullName, &c.Phone, &c.Email, &c.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Customer{}, domain.NotFoundf("customer %d not found", id)
	}
	if err != nil {
		return models.Customer{}, domain.Internal("get customer", err)
	}
	return c, nil
}
