package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/comptoirlabs/comptoir/internal/store"
)

// SettingsManager caches the sys_config table and serves typed reads. The
// cache reloads whenever the settings topic fires on the event bus, so edits
// from any request become visible everywhere without a restart.
type SettingsManager struct {
	store *store.SettingsStore
	mu    sync.RWMutex
	cache map[string]string // "category.name" -> value
}

func NewSettingsManager(s *store.SettingsStore, bus store.Bus) *SettingsManager {
	m := &SettingsManager{store: s, cache: map[string]string{}}
	m.reload()
	_ = bus.Subscribe(store.TopicSettingsChanged, m.reload)
	return m
}

func (m *SettingsManager) reload() {
	configs, err := m.store.All(context.Background())
	if err != nil {
		zap.L().Warn("settings reload failed, keeping cached values", zap.Error(err))
		return
	}
	next := make(map[string]string, len(configs))
	for _, c := range configs {
		next[c.Type+"."+c.Name] = c.Value
	}
	m.mu.Lock()
	m.cache = next
	m.mu.Unlock()
}

func (m *SettingsManager) GetString(category, name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache[category+"."+name]
}

func (m *SettingsManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.GetString(category, name))
}

func (m *SettingsManager) GetInt(category, name string) int {
	return cast.ToInt(m.GetString(category, name))
}

func (m *SettingsManager) GetBool(category, name string) bool {
	return cast.ToBool(m.GetString(category, name))
}

func (m *SettingsManager) GetFloat64(category, name string) float64 {
	return cast.ToFloat64(m.GetString(category, name))
}

// Save writes "category.name" keyed values through to the settings table.
func (m *SettingsManager) Save(values map[string]interface{}) error {
	for key, value := range values {
		category, name, found := strings.Cut(key, ".")
		if !found {
			return fmt.Errorf("invalid settings key %q, want category.name", key)
		}
		if err := m.store.Set(context.Background(), category, name, cast.ToString(value)); err != nil {
			return err
		}
	}
	return nil
}
