package app

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	evbus "github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/gomail.v2"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/comptoirlabs/comptoir/config"
	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/internal/fallback"
	"github.com/comptoirlabs/comptoir/internal/pos"
	"github.com/comptoirlabs/comptoir/internal/store"
	"github.com/comptoirlabs/comptoir/pkg/common"
	"github.com/comptoirlabs/comptoir/pkg/metrics"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	bus       evbus.Bus
	fb        *fallback.Store
	settings  *SettingsManager

	products    *store.ProductStore
	services    *store.ServiceStore
	sales       *store.SaleStore
	expenses    *store.ExpenseStore
	quotes      *store.QuoteStore
	formations  *store.FormationStore
	sysSettings *store.SettingsStore

	finalizer *pos.Finalizer
}

// Ensure Application implements all interfaces
var (
	_ DBProvider       = (*Application)(nil)
	_ ConfigProvider   = (*Application)(nil)
	_ SettingsProvider = (*Application)(nil)
	_ StoreProvider    = (*Application)(nil)
	_ AppContext       = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig { return a.appConfig }
func (a *Application) DB() *gorm.DB              { return a.gormDB }
func (a *Application) Bus() evbus.Bus            { return a.bus }
func (a *Application) Fallback() *fallback.Store { return a.fb }
func (a *Application) Scheduler() *cron.Cron     { return a.sched }

func (a *Application) Products() *store.ProductStore      { return a.products }
func (a *Application) Services() *store.ServiceStore      { return a.services }
func (a *Application) Sales() *store.SaleStore            { return a.sales }
func (a *Application) Expenses() *store.ExpenseStore      { return a.expenses }
func (a *Application) Quotes() *store.QuoteStore          { return a.quotes }
func (a *Application) Formations() *store.FormationStore  { return a.formations }
func (a *Application) SysSettings() *store.SettingsStore  { return a.sysSettings }
func (a *Application) Finalizer() *pos.Finalizer          { return a.finalizer }
func (a *Application) Settings() *SettingsManager         { return a.settings }

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	common.SetupNode(cfg.System.NodeId)

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}
	if cfg.Logger.FileEnable {
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, cfg.Logger.Filename)
	}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	// Initialize metrics with workdir convention
	err = metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	// Initialize database connection
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	// Ensure database schema is migrated before anything reads it
	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	// Durable local mirror used when the remote store is unreachable
	a.fb, err = fallback.Open(filepath.Join(cfg.GetDataDir(), "fallback.db"))
	if err != nil {
		zap.S().Fatalf("failed to open fallback store: %v", err)
	}

	a.bus = evbus.New()

	a.products = store.NewProductStore(a.gormDB, a.fb, a.bus)
	a.services = store.NewServiceStore(a.gormDB, a.fb, a.bus)
	a.sales = store.NewSaleStore(a.gormDB, a.fb, a.bus)
	a.expenses = store.NewExpenseStore(a.gormDB, a.fb, a.bus)
	a.quotes = store.NewQuoteStore(a.gormDB, a.fb, a.bus)
	a.formations = store.NewFormationStore(a.gormDB, a.fb, a.bus)
	a.sysSettings = store.NewSettingsStore(a.gormDB, a.bus)
	a.finalizer = pos.NewFinalizer(a.sales)

	a.settings = NewSettingsManager(a.sysSettings, a.bus)

	// wait for database initialization to complete
	go func() {
		time.Sleep(3 * time.Second)
		a.checkSettings()
		a.checkDemoCatalog()
	}()

	a.initJob()
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// GetSettingsStringValue retrieves a string configuration value
func (a *Application) GetSettingsStringValue(category, key string) string {
	return a.settings.GetString(category, key)
}

// GetSettingsInt64Value retrieves an int64 configuration value
func (a *Application) GetSettingsInt64Value(category, key string) int64 {
	return a.settings.GetInt64(category, key)
}

// GetSettingsBoolValue retrieves a boolean configuration value
func (a *Application) GetSettingsBoolValue(category, key string) bool {
	return a.settings.GetBool(category, key)
}

// SaveSettings writes configuration settings through to the sys_config table
func (a *Application) SaveSettings(settings map[string]interface{}) error {
	return a.settings.Save(settings)
}

// mailDialer returns nil when SMTP is not configured.
func (a *Application) mailDialer() *gomail.Dialer {
	smtp := a.appConfig.Smtp
	if smtp.Host == "" {
		return nil
	}
	port := smtp.Port
	if port == 0 {
		port = 587
	}
	return gomail.NewDialer(smtp.Host, port, smtp.Username, smtp.Password)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.fb != nil {
		_ = a.fb.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
