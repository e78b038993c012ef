package repositories

import (
	"database/sql"
	"errors"

	"fleetbook/internal/domain"
)

// SettingRepo reads the system_settings key/value table.
type SettingRepo struct {
	DB *sql.DB
}

// GetValue returns the raw value and whether the key exists.
func (r SettingRepo) GetValue(key string) (string, bool, error) {
	var v string
	err := r.DB.QueryRow(`SELECT value FROM system_settings WHERE `+"`key`"+` = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, domain.Internal("get setting", err)
	}
	return v, true, nil
}
