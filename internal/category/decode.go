package category

import (
	"encoding/json"
	"fmt"

	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/core/common/validation"
)

var requiredFields = []string{"id", "name", "min_age", "sort_order"}

// DecodeCategory validates one backend record and returns it as a Category.
// Every field must be present with the right JSON type, the id must not be empty
// and min_age must not be negative. Input limits such as name length are not
// applied to stored rows.
func DecodeCategory(raw json.RawMessage) (*Category, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, internal.NewValidationError("category record is not an object", internal.ErrCodeMalformedPayload).WithCause(err)
	}

	for _, name := range requiredFields {
		value, ok := fields[name]
		if !ok || string(value) == "null" {
			return nil, internal.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), internal.ErrCodeInvalidCategory)
		}
	}

	var c Category
	if err := json.Unmarshal(fields["id"], &c.ID); err != nil {
		return nil, internal.NewValidationFieldError("id", "id must be a string", internal.ErrCodeInvalidCategory)
	}
	if err := json.Unmarshal(fields["name"], &c.Name); err != nil {
		return nil, internal.NewValidationFieldError("name", "name must be a string", internal.ErrCodeInvalidCategory)
	}
	if err := json.Unmarshal(fields["min_age"], &c.MinAge); err != nil {
		return nil, internal.NewValidationFieldError("min_age", "min_age must be an integer", internal.ErrCodeInvalidMinAge)
	}
	if err := json.Unmarshal(fields["sort_order"], &c.SortOrder); err != nil {
		return nil, internal.NewValidationFieldError("sort_order", "sort_order must be an integer", internal.ErrCodeInvalidCategory)
	}

	if appErr := validation.ValidateCategoryRecord(c.ID, c.MinAge); appErr != nil {
		return nil, appErr
	}

	return &c, nil
}

// DecodeCategories validates a backend result set. A collection that repeats an
// id is rejected as a whole.
func DecodeCategories(body []byte) ([]*Category, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, internal.NewValidationError("categories payload is not an array", internal.ErrCodeMalformedPayload).WithCause(err)
	}

	categories := make([]*Category, 0, len(records))
	for i, record := range records {
		c, err := DecodeCategory(record)
		if err != nil {
			return nil, fmt.Errorf("category at index %d: %w", i, err)
		}
		categories = append(categories, c)
	}

	if err := CheckUniqueIDs(categories); err != nil {
		return nil, err
	}

	return categories, nil
}

// CheckUniqueIDs returns ErrDuplicateCategoryID naming the first repeated id.
func CheckUniqueIDs(categories []*Category) error {
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if _, dup := seen[c.ID]; dup {
			return internal.ErrDuplicateCategoryID.WithDetails(internal.ValidationErrors{
				Errors: []internal.ValidationError{
					{Field: "id", Message: fmt.Sprintf("category id %q appears more than once", c.ID), Code: string(internal.ErrCodeDuplicateCategoryID)},
				},
			})
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}
