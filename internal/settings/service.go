package settings

import (
	"log/slog"
	"sort"

	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/core/common/validation"
	settingsDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/settings"
)

// RepositoryAPI is implemented over the backend handle (rest) and over a direct
// database connection (postgres). Get returns nil, nil for an unknown key.
type RepositoryAPI interface {
	GetAll() ([]*settingsDatamodel.Settings, error)
	Get(key string) (*settingsDatamodel.Settings, error)
	Upsert(setting *settingsDatamodel.Settings) error
	Delete(key string) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// List returns every setting ordered by key.
func (s *Service) List() ([]*Setting, error) {
	rows, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get settings from repository", "error", err)
		return nil, err
	}

	out := make([]*Setting, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}

	if err := CheckUniqueKeys(out); err != nil {
		s.logger.Error("repository returned duplicate setting keys", "error", err)
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Service) AsMap() (map[string]string, error) {
	list, err := s.List()
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(list))
	for _, st := range list {
		m[st.Key] = st.Value
	}
	return m, nil
}

func (s *Service) Get(key string) (*Setting, error) {
	if appErr := validation.ValidateSetting(key); appErr != nil {
		return nil, appErr
	}

	row, err := s.repo.Get(key)
	if err != nil {
		s.logger.Error("failed to get setting from repository", "key", key, "error", err)
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrSettingNotFound
	}
	return FromDataModel(row), nil
}

// GetOrDefault returns def when the key is absent. Other failures are returned.
func (s *Service) GetOrDefault(key, def string) (string, error) {
	st, err := s.Get(key)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeNotFound {
			return def, nil
		}
		return "", err
	}
	return st.Value, nil
}

func (s *Service) Set(key, value string) (*Setting, error) {
	if appErr := validation.ValidateSetting(key); appErr != nil {
		return nil, appErr
	}

	st := &Setting{Key: key, Value: value}
	if err := s.repo.Upsert(ToDataModel(st)); err != nil {
		s.logger.Error("failed to store setting", "key", key, "error", err)
		return nil, err
	}

	s.logger.Info("setting stored", "key", key)
	return st, nil
}

func (s *Service) Delete(key string) error {
	if _, err := s.Get(key); err != nil {
		return err
	}

	if err := s.repo.Delete(key); err != nil {
		s.logger.Error("failed to delete setting", "key", key, "error", err)
		return err
	}

	s.logger.Info("setting deleted", "key", key)
	return nil
}
