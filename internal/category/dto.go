package category

import (
	"github.com/frahmantamala/catalog-connector/internal"
)

type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MinAge    int    `json:"min_age"`
	SortOrder int    `json:"sort_order"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// CreateCategoryDTO is the payload for a new category. An empty ID is generated.
type CreateCategoryDTO struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	MinAge    *int   `json:"min_age"`
	SortOrder int    `json:"sort_order"`
}

func (dto CreateCategoryDTO) Validate() error {
	if dto.MinAge == nil {
		return internal.NewValidationFieldError("min_age", "min_age is required", internal.ErrCodeInvalidMinAge)
	}
	return nil
}

// UpdateCategoryDTO carries the fields to change; nil fields are left alone.
type UpdateCategoryDTO struct {
	Name      *string `json:"name,omitempty"`
	MinAge    *int    `json:"min_age,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
}

func (dto UpdateCategoryDTO) IsEmpty() bool {
	return dto.Name == nil && dto.MinAge == nil && dto.SortOrder == nil
}
