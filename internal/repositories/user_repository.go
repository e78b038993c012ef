package repositories

import (
	"database/sql"
	"errors"

	"fleetbook/internal/domain"
	"fleetbook/internal/domain/models"
)

type UserRepo struct {
	DB *sql.DB
}

func (r UserRepo) GetByUsername(username string) (models.User, error) {
	row := r.DB.QueryRow(`SELECT id, username, password_hash, role, branch_id, active
		FROM users WHERE username = ?`, username)
	var u models.User
	var branch sql.NullInt64
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &branch, &u.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundf("user %q not found", username)
	}
	if err != nil {
		return models.User{}, domain.Internal("get user", err)
	}
	if branch.Valid {
		u.BranchID = &branch.Int64
	}
	return u, nil
}
