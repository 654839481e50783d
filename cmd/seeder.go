package cmd

import (
	"fmt"
	"log/slog"

	categoryPostgres "github.com/frahmantamala/catalog-connector/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/category"
	settingsDatamodel "github.com/frahmantamala/catalog-connector/internal/core/datamodel/settings"
	settingsPostgres "github.com/frahmantamala/catalog-connector/internal/settings/postgres"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the backend database with default categories and settings",
	Long:  `Insert the default categories and settings through a direct database connection. Existing rows are left untouched unless --clear is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadDatabaseConfig(configPath)
		if err != nil {
			return err
		}
		lg := setupLogger(cfg)

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer sqlxDB.Close()

		gormDB, err := openGormDB(sqlxDB)
		if err != nil {
			return err
		}

		return seed(categoryPostgres.NewCategoryRepository(gormDB), settingsPostgres.NewSettingsRepository(sqlxDB), clearData, lg)
	},
}

var defaultCategories = []categoryDatamodel.Category{
	{ID: "babies", Name: "Babies", MinAge: 0, SortOrder: 0},
	{ID: "toddlers", Name: "Toddlers", MinAge: 1, SortOrder: 10},
	{ID: "preschool", Name: "Preschool", MinAge: 3, SortOrder: 20},
	{ID: "school", Name: "School age", MinAge: 6, SortOrder: 30},
	{ID: "teens", Name: "Teens", MinAge: 13, SortOrder: 40},
}

var defaultSettings = []settingsDatamodel.Settings{
	{Key: "site_title", Value: "My App"},
}

type categorySeeder interface {
	GetByID(id string) (*categoryDatamodel.Category, error)
	Create(category *categoryDatamodel.Category) error
	DeleteAll() error
}

type settingsSeeder interface {
	Get(key string) (*settingsDatamodel.Settings, error)
	Upsert(setting *settingsDatamodel.Settings) error
	DeleteAll() error
}

func seed(categories categorySeeder, settings settingsSeeder, clear bool, lg *slog.Logger) error {
	if clear {
		if err := categories.DeleteAll(); err != nil {
			return fmt.Errorf("failed to clear categories: %w", err)
		}
		if err := settings.DeleteAll(); err != nil {
			return fmt.Errorf("failed to clear settings: %w", err)
		}
		lg.Info("cleared existing categories and settings")
	}

	for _, c := range defaultCategories {
		existing, err := categories.GetByID(c.ID)
		if err != nil {
			return fmt.Errorf("failed to look up category %s: %w", c.ID, err)
		}
		if existing != nil {
			lg.Info("category already exists", "id", c.ID)
			continue
		}
		c := c
		if err := categories.Create(&c); err != nil {
			return fmt.Errorf("failed to insert category %s: %w", c.ID, err)
		}
		lg.Info("seeded category", "id", c.ID, "name", c.Name)
	}

	for _, s := range defaultSettings {
		existing, err := settings.Get(s.Key)
		if err != nil {
			return fmt.Errorf("failed to look up setting %s: %w", s.Key, err)
		}
		if existing != nil {
			lg.Info("setting already exists", "key", s.Key)
			continue
		}
		s := s
		if err := settings.Upsert(&s); err != nil {
			return fmt.Errorf("failed to insert setting %s: %w", s.Key, err)
		}
		lg.Info("seeded setting", "key", s.Key)
	}

	return nil
}
