package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/comptoirlabs/comptoir/config"
	"github.com/comptoirlabs/comptoir/internal/fallback"
	"github.com/comptoirlabs/comptoir/internal/pos"
	"github.com/comptoirlabs/comptoir/internal/store"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SettingsProvider provides system settings access
type SettingsProvider interface {
	GetSettingsStringValue(category, key string) string
	GetSettingsInt64Value(category, key string) int64
	GetSettingsBoolValue(category, key string) bool
	SaveSettings(settings map[string]interface{}) error
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// StoreProvider provides the collection repositories and the sale workflow
type StoreProvider interface {
	Products() *store.ProductStore
	Services() *store.ServiceStore
	Sales() *store.SaleStore
	Expenses() *store.ExpenseStore
	Quotes() *store.QuoteStore
	Formations() *store.FormationStore
	SysSettings() *store.SettingsStore
	Finalizer() *pos.Finalizer
	Fallback() *fallback.Store
}

// AppContext combines all provider interfaces for full application context.
// Handlers should depend on specific providers or this combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	SettingsProvider
	SchedulerProvider
	StoreProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
