package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/internal/fallback"
	"github.com/comptoirlabs/comptoir/pkg/common"
)

const servicesCollection = "services"

// ServiceStore mirrors the ProductStore contract for the services table.
// Services carry no stock, so there is no adjustment path.
type ServiceStore struct {
	db    *gorm.DB
	fb    *fallback.Store
	bus   Bus
	cache listCache[domain.Service]
}

func NewServiceStore(db *gorm.DB, fb *fallback.Store, bus Bus) *ServiceStore {
	s := &ServiceStore{db: db, fb: fb, bus: bus}
	_ = bus.Subscribe(TopicServicesChanged, s.cache.invalidate)
	return s
}

func (s *ServiceStore) List(ctx context.Context) (services []domain.Service, degraded bool, err error) {
	if cached, ok := s.cache.get(); ok {
		return cached, false, nil
	}
	err = s.db.WithContext(ctx).Order("name").Find(&services).Error
	if err != nil {
		zap.L().Warn("service list degraded to local mirror", zap.Error(err))
		local := []domain.Service{}
		s.fb.ReadOr(servicesCollection, &local)
		return local, true, nil
	}
	s.cache.set(services)
	if werr := s.fb.Write(servicesCollection, services); werr != nil {
		zap.L().Error("failed to refresh services mirror", zap.Error(werr))
	} else {
		_ = s.fb.ClearUnsynced(servicesCollection)
	}
	return services, false, nil
}

func (s *ServiceStore) Get(ctx context.Context, id int64) (*domain.Service, error) {
	var sv domain.Service
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sv).Error; err != nil {
		return nil, err
	}
	return &sv, nil
}

func (s *ServiceStore) Create(ctx context.Context, sv *domain.Service) (local bool, err error) {
	if sv.ID == 0 {
		sv.ID = common.UUIDint64()
	}
	sv.CreatedAt = time.Now()
	sv.UpdatedAt = sv.CreatedAt
	s.mirrorMutate(func(items []domain.Service) []domain.Service {
		return append(items, *sv)
	})
	defer s.bus.Publish(TopicServicesChanged)

	if err := s.db.WithContext(ctx).Create(sv).Error; err != nil {
		if RemoteRejected(err) {
			return false, errors.Wrap(err, "create service rejected")
		}
		zap.L().Warn("service kept local only", zap.Int64("id", sv.ID), zap.Error(err))
		_ = s.fb.MarkUnsynced(servicesCollection, sv.ID)
		return true, nil
	}
	return false, nil
}

func (s *ServiceStore) Update(ctx context.Context, sv *domain.Service) (local bool, err error) {
	sv.UpdatedAt = time.Now()
	s.mirrorMutate(func(items []domain.Service) []domain.Service {
		for i := range items {
			if items[i].ID == sv.ID {
				items[i] = *sv
			}
		}
		return items
	})
	defer s.bus.Publish(TopicServicesChanged)

	if err := s.db.WithContext(ctx).Save(sv).Error; err != nil {
		if RemoteRejected(err) {
			return false, errors.Wrap(err, "update service rejected")
		}
		_ = s.fb.MarkUnsynced(servicesCollection, sv.ID)
		return true, nil
	}
	return false, nil
}

func (s *ServiceStore) Delete(ctx context.Context, id int64) (local bool, err error) {
	s.mirrorMutate(func(items []domain.Service) []domain.Service {
		out := items[:0]
		for _, it := range items {
			if it.ID != id {
				out = append(out, it)
			}
		}
		return out
	})
	defer s.bus.Publish(TopicServicesChanged)

	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Service{}).Error; err != nil {
		if RemoteRejected(err) {
			return false, errors.Wrap(err, "delete service rejected")
		}
		_ = s.fb.MarkUnsynced(servicesCollection, id)
		return true, nil
	}
	return false, nil
}

func (s *ServiceStore) mirrorMutate(fn func([]domain.Service) []domain.Service) {
	items := []domain.Service{}
	s.fb.ReadOr(servicesCollection, &items)
	if err := s.fb.Write(servicesCollection, fn(items)); err != nil {
		zap.L().Error("failed to update services mirror", zap.Error(err))
	}
}
