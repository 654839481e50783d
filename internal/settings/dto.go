package settings

import "github.com/frahmantamala/catalog-connector/internal"

type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type SetSettingDTO struct {
	Value *string `json:"value"`
}

func (dto SetSettingDTO) Validate() error {
	if dto.Value == nil {
		return internal.NewValidationFieldError("value", "value is required", internal.ErrCodeInvalidSetting)
	}
	return nil
}
