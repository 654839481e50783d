package settings

import (
	"encoding/json"
	"fmt"

	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/core/common/validation"
)

// DecodeSetting validates one backend record. Both key and value must be strings;
// an empty value is allowed, an empty key is not.
func DecodeSetting(raw json.RawMessage) (*Setting, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, internal.NewValidationError("setting record is not an object", internal.ErrCodeMalformedPayload).WithCause(err)
	}

	var s Setting
	for _, f := range []struct {
		name string
		dst  *string
	}{{"key", &s.Key}, {"value", &s.Value}} {
		value, ok := fields[f.name]
		if !ok || string(value) == "null" {
			return nil, internal.NewValidationFieldError(f.name, fmt.Sprintf("%s is required", f.name), internal.ErrCodeInvalidSetting)
		}
		if err := json.Unmarshal(value, f.dst); err != nil {
			return nil, internal.NewValidationFieldError(f.name, fmt.Sprintf("%s must be a string", f.name), internal.ErrCodeInvalidSetting)
		}
	}

	if appErr := validation.ValidateSettingRecord(s.Key); appErr != nil {
		return nil, appErr
	}

	return &s, nil
}

// DecodeSettings validates a backend result set and rejects repeated keys.
func DecodeSettings(body []byte) ([]*Setting, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, internal.NewValidationError("settings payload is not an array", internal.ErrCodeMalformedPayload).WithCause(err)
	}

	out := make([]*Setting, 0, len(records))
	for i, record := range records {
		s, err := DecodeSetting(record)
		if err != nil {
			return nil, fmt.Errorf("setting at index %d: %w", i, err)
		}
		out = append(out, s)
	}

	if err := CheckUniqueKeys(out); err != nil {
		return nil, err
	}
	return out, nil
}

func CheckUniqueKeys(settings []*Setting) error {
	seen := make(map[string]struct{}, len(settings))
	for _, s := range settings {
		if _, dup := seen[s.Key]; dup {
			return internal.ErrDuplicateSettingKey.WithDetails(internal.ValidationErrors{
				Errors: []internal.ValidationError{
					{Field: "key", Message: fmt.Sprintf("setting key %q appears more than once", s.Key), Code: string(internal.ErrCodeDuplicateSettingKey)},
				},
			})
		}
		seen[s.Key] = struct{}{}
	}
	return nil
}
