package category

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/core/common/validation"
	categoryDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/category"
	"github.com/google/uuid"
)

// RepositoryAPI is implemented by the backend handle (rest) and by the direct
// database connection used for admin tooling (postgres). GetByID returns nil, nil
// when the id does not exist.
type RepositoryAPI interface {
	GetAll() ([]*categoryDatamodel.Category, error)
	GetByID(id string) (*categoryDatamodel.Category, error)
	Create(category *categoryDatamodel.Category) error
	Update(category *categoryDatamodel.Category) error
	Delete(id string) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetAll returns every category ordered for display.
func (s *Service) GetAll() ([]*Category, error) {
	dataCategories, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, err
	}

	categories := make([]*Category, 0, len(dataCategories))
	for _, dataCategory := range dataCategories {
		categories = append(categories, FromDataModel(dataCategory))
	}

	if err := CheckUniqueIDs(categories); err != nil {
		s.logger.Error("repository returned duplicate category ids", "error", err)
		return nil, err
	}

	SortForDisplay(categories)
	return categories, nil
}

func (s *Service) GetAllCategories() ([]CategoryResponse, error) {
	categories, err := s.GetAll()
	if err != nil {
		return nil, err
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, c.ToResponse())
	}

	s.logger.Info("retrieved categories", "count", len(responses))
	return responses, nil
}

// CategoriesForAge returns the categories whose min_age does not exceed age.
func (s *Service) CategoriesForAge(age int) ([]CategoryResponse, error) {
	if age < 0 {
		return nil, internal.NewValidationFieldError("age", "age must not be negative", internal.ErrCodeInvalidMinAge)
	}

	categories, err := s.GetAll()
	if err != nil {
		return nil, err
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		if c.SuitableFor(age) {
			responses = append(responses, c.ToResponse())
		}
	}

	s.logger.Info("retrieved categories for age", "age", age, "count", len(responses))
	return responses, nil
}

func (s *Service) GetCategory(id string) (*CategoryResponse, error) {
	c, err := s.getByID(id)
	if err != nil {
		return nil, err
	}
	response := c.ToResponse()
	return &response, nil
}

func (s *Service) Create(dto CreateCategoryDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(dto.ID)
	if id == "" {
		id = uuid.NewString()
	}

	c := NewCategory(id, strings.TrimSpace(dto.Name), *dto.MinAge, dto.SortOrder)
	if appErr := validation.ValidateCategory(c.ID, c.Name, c.MinAge); appErr != nil {
		return nil, appErr
	}

	existing, err := s.repo.GetByID(c.ID)
	if err != nil {
		s.logger.Error("failed to check category id", "id", c.ID, "error", err)
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrDuplicateCategoryID
	}

	if err := s.repo.Create(ToDataModel(c)); err != nil {
		s.logger.Error("failed to create category", "id", c.ID, "error", err)
		return nil, err
	}

	s.logger.Info("category created", "id", c.ID, "name", c.Name, "min_age", c.MinAge)
	return c, nil
}

func (s *Service) Update(id string, dto UpdateCategoryDTO) (*Category, error) {
	if dto.IsEmpty() {
		return nil, internal.NewValidationError("no fields to update", internal.ErrCodeValidationFailed)
	}

	c, err := s.getByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		c.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.MinAge != nil {
		c.MinAge = *dto.MinAge
	}
	if dto.SortOrder != nil {
		c.SortOrder = *dto.SortOrder
	}

	if appErr := validation.ValidateCategory(c.ID, c.Name, c.MinAge); appErr != nil {
		return nil, appErr
	}

	if err := s.repo.Update(ToDataModel(c)); err != nil {
		s.logger.Error("failed to update category", "id", c.ID, "error", err)
		return nil, err
	}

	s.logger.Info("category updated", "id", c.ID)
	return c, nil
}

func (s *Service) Delete(id string) error {
	if _, err := s.getByID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete category", "id", id, "error", err)
		return err
	}

	s.logger.Info("category deleted", "id", id)
	return nil
}

func (s *Service) getByID(id string) (*Category, error) {
	if strings.TrimSpace(id) == "" {
		return nil, internal.NewValidationFieldError("id", "id is required", internal.ErrCodeInvalidCategory)
	}

	dataCategory, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get category from repository", "id", id, "error", err)
		return nil, err
	}
	if dataCategory == nil {
		return nil, internal.ErrCategoryNotFound
	}
	return FromDataModel(dataCategory), nil
}

// SortForDisplay orders by sort_order, breaking ties by name and then id so the
// result is stable when sort_order repeats.
func SortForDisplay(categories []*Category) {
	slices.SortStableFunc(categories, func(a, b *Category) int {
		return cmp.Or(
			cmp.Compare(a.SortOrder, b.SortOrder),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.ID, b.ID),
		)
	})
}
