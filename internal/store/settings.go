package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/pkg/common"
)

// SettingsStore reads and writes the sys_config table. Typed access with
// in-memory caching lives in the app package's SettingsManager.
type SettingsStore struct {
	db  *gorm.DB
	bus Bus
}

func NewSettingsStore(db *gorm.DB, bus Bus) *SettingsStore {
	return &SettingsStore{db: db, bus: bus}
}

func (s *SettingsStore) All(ctx context.Context) ([]domain.SysConfig, error) {
	var configs []domain.SysConfig
	err := s.db.WithContext(ctx).Order("sort").Find(&configs).Error
	return configs, err
}

func (s *SettingsStore) Get(ctx context.Context, category, name string) (string, error) {
	var cfg domain.SysConfig
	err := s.db.WithContext(ctx).Where("type = ? AND name = ?", category, name).First(&cfg).Error
	if err != nil {
		return "", err
	}
	return cfg.Value, nil
}

// Set upserts a configuration value.
func (s *SettingsStore) Set(ctx context.Context, category, name, value string) error {
	var cfg domain.SysConfig
	err := s.db.WithContext(ctx).Where("type = ? AND name = ?", category, name).First(&cfg).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = s.db.WithContext(ctx).Create(&domain.SysConfig{
			ID:    common.UUIDint64(),
			Type:  category,
			Name:  name,
			Value: value,
		}).Error
	case err == nil:
		err = s.db.WithContext(ctx).Model(&domain.SysConfig{}).Where("id = ?", cfg.ID).
			Updates(map[string]interface{}{"value": value, "updated_at": time.Now()}).Error
	}
	if err != nil {
		return err
	}
	s.bus.Publish(TopicSettingsChanged)
	return nil
}
