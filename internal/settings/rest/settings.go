package rest

import (
	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/backend"
	settingsDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/settings"
	"github.com/frahmantamala/catalog-connector/internal/settings"
	"github.com/supabase-community/postgrest-go"
)

const table = "settings"

var _ settings.RepositoryAPI = (*SettingsRepository)(nil)

type SettingsRepository struct {
	client *backend.Client
}

func NewSettingsRepository(client *backend.Client) *SettingsRepository {
	return &SettingsRepository{client: client}
}

func (r *SettingsRepository) Client() *backend.Client {
	return r.client
}

func (r *SettingsRepository) GetAll() ([]*settingsDatamodel.Settings, error) {
	body, _, err := r.client.From(table).
		Select("key,value", "", false).
		Order("key", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, internal.NewExternalError("failed to fetch settings", err)
	}
	return decode(body)
}

func (r *SettingsRepository) Get(key string) (*settingsDatamodel.Settings, error) {
	body, _, err := r.client.From(table).
		Select("key,value", "", false).
		Eq("key", key).
		Execute()
	if err != nil {
		return nil, internal.NewExternalError("failed to fetch setting", err)
	}

	rows, err := decode(body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *SettingsRepository) Upsert(setting *settingsDatamodel.Settings) error {
	_, _, err := r.client.From(table).
		Upsert(setting, "key", "minimal", "").
		Execute()
	if err != nil {
		return internal.NewExternalError("failed to store setting", err)
	}
	return nil
}

func (r *SettingsRepository) Delete(key string) error {
	body, _, err := r.client.From(table).
		Delete("representation", "").
		Eq("key", key).
		Execute()
	if err != nil {
		return internal.NewExternalError("failed to delete setting", err)
	}

	deleted, err := decode(body)
	if err != nil {
		return err
	}
	if len(deleted) == 0 {
		return internal.ErrSettingNotFound
	}
	return nil
}

func decode(body []byte) ([]*settingsDatamodel.Settings, error) {
	decoded, err := settings.DecodeSettings(body)
	if err != nil {
		return nil, internal.NewExternalError("backend returned invalid settings", err)
	}
	out := make([]*settingsDatamodel.Settings, 0, len(decoded))
	for _, s := range decoded {
		out = append(out, settings.ToDataModel(s))
	}
	return out, nil
}
