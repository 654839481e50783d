package postgres

import (
	"database/sql"
	"errors"

	"github.com/frahmantamala/catalog-connector/internal"
	settingsDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/settings"
	"github.com/frahmantamala/catalog-connector/internal/settings"
	"github.com/jmoiron/sqlx"
)

var _ settings.RepositoryAPI = (*SettingsRepository)(nil)

// SettingsRepository uses a direct database connection. Queries are written with
// ? placeholders and rebound for the driver in use.
type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetAll() ([]*settingsDatamodel.Settings, error) {
	var rows []*settingsDatamodel.Settings
	err := r.db.Select(&rows, `SELECT key, value FROM settings ORDER BY key ASC`)
	return rows, err
}

func (r *SettingsRepository) Get(key string) (*settingsDatamodel.Settings, error) {
	var row settingsDatamodel.Settings
	err := r.db.Get(&row, r.db.Rebind(`SELECT key, value FROM settings WHERE key = ?`), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *SettingsRepository) Upsert(setting *settingsDatamodel.Settings) error {
	_, err := r.db.NamedExec(
		`INSERT INTO settings (key, value) VALUES (:key, :value)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		setting,
	)
	return err
}

func (r *SettingsRepository) Delete(key string) error {
	result, err := r.db.Exec(r.db.Rebind(`DELETE FROM settings WHERE key = ?`), key)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return internal.ErrSettingNotFound
	}
	return nil
}

// DeleteAll removes every setting; the seed command uses it with --clear.
func (r *SettingsRepository) DeleteAll() error {
	_, err := r.db.Exec(`DELETE FROM settings`)
	return err
}
