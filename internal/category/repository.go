package category

import (
	categoryDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/category"
)

var _ RepositoryAPI = (*SplitRepository)(nil)

// SplitRepository reads through one repository and writes through another. The
// publishable key is only granted SELECT on the backend tables, so the server
// reads through the handle and writes over the direct database connection.
type SplitRepository struct {
	reads  RepositoryAPI
	writes RepositoryAPI
}

func NewSplitRepository(reads, writes RepositoryAPI) *SplitRepository {
	return &SplitRepository{reads: reads, writes: writes}
}

func (r *SplitRepository) GetAll() ([]*categoryDatamodel.Category, error) {
	return r.reads.GetAll()
}

func (r *SplitRepository) GetByID(id string) (*categoryDatamodel.Category, error) {
	return r.reads.GetByID(id)
}

func (r *SplitRepository) Create(category *categoryDatamodel.Category) error {
	return r.writes.Create(category)
}

func (r *SplitRepository) Update(category *categoryDatamodel.Category) error {
	return r.writes.Update(category)
}

func (r *SplitRepository) Delete(id string) error {
	return r.writes.Delete(id)
}
