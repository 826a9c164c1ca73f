package app

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/pkg/common"
)

type configSchema struct {
	Key         string
	Default     string
	Description string
}

// Default system settings, created once when missing. Keys are
// "category.name" pairs split into the sys_config type/name columns.
var configSchemas = []configSchema{
	{Key: "company.name", Default: "Comptoir", Description: "Company name shown on invoices and quotes"},
	{Key: "company.address", Default: "", Description: "Company address shown on printed documents"},
	{Key: "company.phone", Default: "", Description: "Company phone shown on printed documents"},
	{Key: "company.currency", Default: "FCFA", Description: "Display currency for all amounts"},
	{Key: "inventory.movement_retention_days", Default: "365", Description: "Days of inventory movement history to retain"},
	{Key: "alerts.low_stock_enabled", Default: "true", Description: "Enable the periodic low stock scan"},
	{Key: "backup.collections", Default: "products,services,sales,expenses,quotes", Description: "Collections included in the JSON backup"},
}

func (a *Application) checkSettings() {
	for sortid, schema := range configSchemas {
		parts := strings.SplitN(schema.Key, ".", 2)
		if len(parts) != 2 {
			zap.L().Warn("invalid config key format", zap.String("key", schema.Key))
			continue
		}
		category := parts[0]
		name := parts[1]

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
	a.settings.reload()
}

// checkDemoCatalog seeds a handful of catalog rows on an empty database so
// the counter is usable out of the box.
func (a *Application) checkDemoCatalog() {
	var count int64
	a.gormDB.Model(&domain.Product{}).Count(&count)
	if count == 0 {
		defaultProducts := []domain.Product{
			{Name: "Rame papier A4", Category: "fourniture", Price: 2500, Stock: 20, MinStock: 5, MaxStock: 100},
			{Name: "Chemise A4", Category: "fourniture", Price: 300, Stock: 35, MinStock: 10, MaxStock: 200},
			{Name: "Ticket Wifi 1h", Category: "wifi", Price: 200, Stock: 50, MinStock: 10, MaxStock: 500},
		}
		for _, p := range defaultProducts {
			p.ID = common.UUIDint64()
			p.CreatedAt = time.Now()
			p.UpdatedAt = p.CreatedAt
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default product", zap.String("name", p.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default product", zap.String("name", p.Name))
			}
		}
	}

	a.gormDB.Model(&domain.Service{}).Count(&count)
	if count == 0 {
		defaultServices := []domain.Service{
			{Name: "Photocopie N&B A4", Category: "photocopie", Price: 25, Unit: "page"},
			{Name: "Photocopie Couleur A4", Category: "photocopie", Price: 100, Unit: "page"},
			{Name: "Impression A4", Category: "impression", Price: 150, Unit: "page"},
			{Name: "Saisie document", Category: "saisie", Price: 200, Unit: "page"},
		}
		for _, s := range defaultServices {
			s.ID = common.UUIDint64()
			s.CreatedAt = time.Now()
			s.UpdatedAt = s.CreatedAt
			if err := a.gormDB.Create(&s).Error; err != nil {
				zap.L().Error("failed to create default service", zap.String("name", s.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default service", zap.String("name", s.Name))
			}
		}
	}
}
