package settings

import (
	settingsDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/settings"
)

// Setting is one key/value pair; the value's format belongs to whoever reads the key.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Well-known keys the application reads.
const (
	KeySiteTitle = "site_title"
)

func (s *Setting) ToResponse() SettingResponse {
	return SettingResponse{Key: s.Key, Value: s.Value}
}

func ToDataModel(s *Setting) *settingsDatamodel.Settings {
	return &settingsDatamodel.Settings{Key: s.Key, Value: s.Value}
}

func FromDataModel(s *settingsDatamodel.Settings) *Setting {
	return &Setting{Key: s.Key, Value: s.Value}
}
