package settings

import (
	settingsDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/settings"
)

var _ RepositoryAPI = (*SplitRepository)(nil)

// SplitRepository reads through one repository and writes through another; see
// category.SplitRepository.
type SplitRepository struct {
	reads  RepositoryAPI
	writes RepositoryAPI
}

func NewSplitRepository(reads, writes RepositoryAPI) *SplitRepository {
	return &SplitRepository{reads: reads, writes: writes}
}

func (r *SplitRepository) GetAll() ([]*settingsDatamodel.Settings, error) {
	return r.reads.GetAll()
}

func (r *SplitRepository) Get(key string) (*settingsDatamodel.Settings, error) {
	return r.reads.Get(key)
}

func (r *SplitRepository) Upsert(setting *settingsDatamodel.Settings) error {
	return r.writes.Upsert(setting)
}

func (r *SplitRepository) Delete(key string) error {
	return r.writes.Delete(key)
}
