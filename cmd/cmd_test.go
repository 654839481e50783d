package cmd

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/category"
	"github.com/frahmantamala/catalog-connector/internal/core/common/validation"
	categoryDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/category"
	settingsDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/settings"
	"github.com/frahmantamala/catalog-connector/internal/settings"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeCategorySeeder struct {
	rows    map[string]*categoryDatamodel.Category
	cleared bool
	err     error
}

func (f *fakeCategorySeeder) GetByID(id string) (*categoryDatamodel.Category, error) {
	return f.rows[id], f.err
}

func (f *fakeCategorySeeder) Create(c *categoryDatamodel.Category) error {
	if f.err != nil {
		return f.err
	}
	f.rows[c.ID] = c
	return nil
}

func (f *fakeCategorySeeder) DeleteAll() error {
	f.cleared = true
	f.rows = make(map[string]*categoryDatamodel.Category)
	return nil
}

type fakeSettingsSeeder struct {
	rows    map[string]string
	cleared bool
}

func (f *fakeSettingsSeeder) Get(key string) (*settingsDatamodel.Settings, error) {
	v, ok := f.rows[key]
	if !ok {
		return nil, nil
	}
	return &settingsDatamodel.Settings{Key: key, Value: v}, nil
}

func (f *fakeSettingsSeeder) Upsert(s *settingsDatamodel.Settings) error {
	f.rows[s.Key] = s.Value
	return nil
}

func (f *fakeSettingsSeeder) DeleteAll() error {
	f.cleared = true
	f.rows = make(map[string]string)
	return nil
}

var _ = Describe("seed", func() {
	var (
		categories *fakeCategorySeeder
		store      *fakeSettingsSeeder
	)

	BeforeEach(func() {
		categories = &fakeCategorySeeder{rows: make(map[string]*categoryDatamodel.Category)}
		store = &fakeSettingsSeeder{rows: make(map[string]string)}
	})

	It("inserts the defaults", func() {
		Expect(seed(categories, store, false, quietLogger)).To(Succeed())
		Expect(categories.rows).To(HaveLen(len(defaultCategories)))
		Expect(categories.rows["toddlers"].MinAge).To(Equal(1))
		Expect(store.rows).To(HaveKeyWithValue("site_title", "My App"))
	})

	It("leaves existing rows alone", func() {
		categories.rows["toddlers"] = &categoryDatamodel.Category{ID: "toddlers", Name: "Renamed", MinAge: 2}
		store.rows["site_title"] = "Custom"

		Expect(seed(categories, store, false, quietLogger)).To(Succeed())
		Expect(categories.rows["toddlers"].Name).To(Equal("Renamed"))
		Expect(store.rows["site_title"]).To(Equal("Custom"))
	})

	It("clears first when asked", func() {
		store.rows["stale"] = "x"

		Expect(seed(categories, store, true, quietLogger)).To(Succeed())
		Expect(categories.cleared).To(BeTrue())
		Expect(store.cleared).To(BeTrue())
		Expect(store.rows).NotTo(HaveKey("stale"))
	})

	It("stops on a repository failure", func() {
		categories.err = errors.New("db down")
		Expect(seed(categories, store, false, quietLogger)).NotTo(Succeed())
		Expect(store.rows).To(BeEmpty())
	})

	It("only seeds valid categories", func() {
		for _, c := range defaultCategories {
			Expect(validation.ValidateCategory(c.ID, c.Name, c.MinAge)).To(BeNil(), c.ID)
		}
	})
})

var _ = Describe("wireDependencies", func() {
	It("shares one backend handle", func() {
		cfg := &internal.Config{Backend: internal.BackendConfig{
			URL:            "https://example.supabase.co",
			PublishableKey: "sb_publishable_test",
		}}

		deps, err := wireDependencies(cfg, quietLogger)
		Expect(err).NotTo(HaveOccurred())
		Expect(deps.Backend).NotTo(BeNil())
		Expect(deps.Categories).NotTo(BeNil())
		Expect(deps.Settings).NotTo(BeNil())
		Expect(deps.Backend.URL()).To(Equal("https://example.supabase.co"))
		Expect(deps.categoryReader.Client()).To(BeIdenticalTo(deps.Backend))
		Expect(deps.settingsReader.Client()).To(BeIdenticalTo(deps.Backend))
	})

	It("refuses writes without a direct database", func() {
		cfg := &internal.Config{Backend: internal.BackendConfig{
			URL:            "https://example.supabase.co",
			PublishableKey: "sb_publishable_test",
		}}

		deps, err := wireDependencies(cfg, quietLogger)
		Expect(err).NotTo(HaveOccurred())
		Expect(deps.DB).To(BeNil())
		Expect(internal.IsConfigurationError(deps.RequireWriter())).To(BeTrue())
		Expect(deps.Close()).To(Succeed())
	})

	It("aborts on a configuration error", func() {
		deps, err := wireDependencies(&internal.Config{}, quietLogger)
		Expect(deps).To(BeNil())
		Expect(internal.IsConfigurationError(err)).To(BeTrue())
	})
})

var _ = Describe("loadConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		GinkgoT().Setenv("APP_ENV", "")
		GinkgoT().Setenv("DOCKER_ENV", "")
		GinkgoT().Setenv(internal.EnvPublicBackendURL, "")
		GinkgoT().Setenv(internal.EnvPublicBackendAPIKey, "")
	})

	It("reads the backend from config.yml", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(`
backend:
  url: https://example.supabase.co
  publishable_key: sb_publishable_from_file
`), 0o600)).To(Succeed())

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Backend.PublishableKey).To(Equal("sb_publishable_from_file"))
		Expect(cfg.Server.Port).To(Equal(8080))
	})

	It("takes the public environment names", func() {
		GinkgoT().Setenv(internal.EnvPublicBackendURL, "https://env.supabase.co")
		GinkgoT().Setenv(internal.EnvPublicBackendAPIKey, "sb_publishable_from_env")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Backend.URL).To(Equal("https://env.supabase.co"))
		Expect(cfg.Backend.PublishableKey).To(Equal("sb_publishable_from_env"))
	})

	It("fails without a backend", func() {
		_, err := loadServiceConfig(dir)
		Expect(internal.IsConfigurationError(err)).To(BeTrue())
	})

	It("does not need a backend for database commands", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(`
database:
  source: postgres://localhost:5432/catalog?sslmode=disable
`), 0o600)).To(Succeed())

		cfg, err := loadDatabaseConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Source).To(ContainSubstring("catalog"))
	})

	It("still requires a database source for database commands", func() {
		_, err := loadDatabaseConfig(dir)
		Expect(internal.IsConfigurationError(err)).To(BeTrue())
	})
})

var _ = Describe("printing", func() {
	It("tabulates categories", func() {
		var buf bytes.Buffer
		Expect(printCategories(&buf, []category.CategoryResponse{{ID: "c1", Name: "Toddlers", MinAge: 1, SortOrder: 10}})).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Toddlers"))
		Expect(buf.String()).To(HavePrefix("ID"))
	})

	It("tabulates settings", func() {
		var buf bytes.Buffer
		Expect(printSettings(&buf, []*settings.Setting{{Key: "site_title", Value: "My App"}})).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("site_title  My App"))
	})
})
