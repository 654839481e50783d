package rest

import (
	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/backend"
	"github.com/frahmantamala/catalog-connector/internal/category"
	categoryDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/category"
	"github.com/supabase-community/postgrest-go"
)

const (
	table   = "categories"
	columns = "id,name,min_age,sort_order"
)

var _ category.RepositoryAPI = (*CategoryRepository)(nil)

// CategoryRepository reads and writes categories through the shared backend handle.
// Every response body passes through category.DecodeCategories before use; a body
// that fails is the backend's fault and is reported as an external error.
type CategoryRepository struct {
	client *backend.Client
}

func NewCategoryRepository(client *backend.Client) *CategoryRepository {
	return &CategoryRepository{client: client}
}

func (r *CategoryRepository) Client() *backend.Client {
	return r.client
}

func (r *CategoryRepository) GetAll() ([]*categoryDatamodel.Category, error) {
	body, _, err := r.client.From(table).
		Select(columns, "", false).
		Order("sort_order", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, internal.NewExternalError("failed to fetch categories", err)
	}
	return decode(body)
}

func (r *CategoryRepository) GetByID(id string) (*categoryDatamodel.Category, error) {
	body, _, err := r.client.From(table).
		Select(columns, "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, internal.NewExternalError("failed to fetch category", err)
	}

	categories, err := decode(body)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, nil
	}
	return categories[0], nil
}

func (r *CategoryRepository) Create(cat *categoryDatamodel.Category) error {
	_, _, err := r.client.From(table).
		Insert(cat, false, "", "minimal", "").
		Execute()
	if err != nil {
		return internal.NewExternalError("failed to create category", err)
	}
	return nil
}

func (r *CategoryRepository) Update(cat *categoryDatamodel.Category) error {
	body, _, err := r.client.From(table).
		Update(map[string]interface{}{
			"name":       cat.Name,
			"min_age":    cat.MinAge,
			"sort_order": cat.SortOrder,
		}, "representation", "").
		Eq("id", cat.ID).
		Execute()
	if err != nil {
		return internal.NewExternalError("failed to update category", err)
	}

	updated, err := decode(body)
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		return internal.ErrCategoryNotFound
	}
	return nil
}

// Delete reports ErrCategoryNotFound when no row was removed, which is also what
// the backend answers when row-level security hides the row from this key.
func (r *CategoryRepository) Delete(id string) error {
	body, _, err := r.client.From(table).
		Delete("representation", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return internal.NewExternalError("failed to delete category", err)
	}

	deleted, err := decode(body)
	if err != nil {
		return err
	}
	if len(deleted) == 0 {
		return internal.ErrCategoryNotFound
	}
	return nil
}

func decode(body []byte) ([]*categoryDatamodel.Category, error) {
	decoded, err := category.DecodeCategories(body)
	if err != nil {
		return nil, internal.NewExternalError("backend returned invalid categories", err)
	}
	out := make([]*categoryDatamodel.Category, 0, len(decoded))
	for _, c := range decoded {
		out = append(out, category.ToDataModel(c))
	}
	return out, nil
}
