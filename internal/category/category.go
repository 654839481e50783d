package category

import (
	categoryDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/category"
)

// Category groups content by the minimum age it is suitable for.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MinAge    int    `json:"min_age"`
	SortOrder int    `json:"sort_order"`
}

// SuitableFor reports whether someone of the given age may see the category.
func (c *Category) SuitableFor(age int) bool {
	return age >= c.MinAge
}

func (c *Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		MinAge:    c.MinAge,
		SortOrder: c.SortOrder,
	}
}

func NewCategory(id, name string, minAge, sortOrder int) *Category {
	return &Category{
		ID:        id,
		Name:      name,
		MinAge:    minAge,
		SortOrder: sortOrder,
	}
}

func ToDataModel(c *Category) *categoryDatamodel.Category {
	return &categoryDatamodel.Category{
		ID:        c.ID,
		Name:      c.Name,
		MinAge:    c.MinAge,
		SortOrder: c.SortOrder,
	}
}

func FromDataModel(c *categoryDatamodel.Category) *Category {
	return &Category{
		ID:        c.ID,
		Name:      c.Name,
		MinAge:    c.MinAge,
		SortOrder: c.SortOrder,
	}
}
