package postgres

import (
	"errors"

	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/category"
	categoryDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/category"
	"gorm.io/gorm"
)

var _ category.RepositoryAPI = (*CategoryRepository)(nil)

// CategoryRepository talks to the backend's Postgres directly. It is used by the
// seed command and other admin tooling that hold a database connection string.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll() ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	err := r.db.Order("sort_order ASC").Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByID(id string) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.Where("id = ?", id).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(cat *categoryDatamodel.Category) error {
	return r.db.Create(cat).Error
}

func (r *CategoryRepository) Update(cat *categoryDatamodel.Category) error {
	result := r.db.Model(&categoryDatamodel.Category{}).
		Where("id = ?", cat.ID).
		Updates(map[string]interface{}{
			"name":       cat.Name,
			"min_age":    cat.MinAge,
			"sort_order": cat.SortOrder,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&categoryDatamodel.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrCategoryNotFound
	}
	return nil
}

// DeleteAll removes every category; the seed command uses it with --clear.
func (r *CategoryRepository) DeleteAll() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&categoryDatamodel.Category{}).Error
}
