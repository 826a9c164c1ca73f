package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/internal/fallback"
	"github.com/comptoirlabs/comptoir/pkg/common"
)

const productsCollection = "products"

// ProductStore owns every read and write against the products table plus its
// local mirror. It is the single writer of Product.Stock outside the sale
// finalize transaction.
type ProductStore struct {
	db    *gorm.DB
	fb    *fallback.Store
	bus   Bus
	cache listCache[domain.Product]
}

func NewProductStore(db *gorm.DB, fb *fallback.Store, bus Bus) *ProductStore {
	s := &ProductStore{db: db, fb: fb, bus: bus}
	_ = bus.Subscribe(TopicProductsChanged, s.cache.invalidate)
	return s
}

// List returns the products ordered by name. On remote failure it degrades to
// the last mirrored list (degraded=true); a successful fetch overwrites the
// mirror last-fetch-wins and clears any unsynced markers.
func (s *ProductStore) List(ctx context.Context) (products []domain.Product, degraded bool, err error) {
	if cached, ok := s.cache.get(); ok {
		return cached, false, nil
	}
	err = s.db.WithContext(ctx).Order("name").Find(&products).Error
	if err != nil {
		zap.L().Warn("product list degraded to local mirror", zap.Error(err))
		local := []domain.Product{}
		s.fb.ReadOr(productsCollection, &local)
		return local, true, nil
	}
	s.cache.set(products)
	if werr := s.fb.Write(productsCollection, products); werr != nil {
		zap.L().Error("failed to refresh products mirror", zap.Error(werr))
	} else {
		_ = s.fb.ClearUnsynced(productsCollection)
	}
	return products, false, nil
}

func (s *ProductStore) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Create writes the product to the local mirror first, then attempts the
// remote insert. local=true means the row only exists in the mirror.
func (s *ProductStore) Create(ctx context.Context, p *domain.Product) (local bool, err error) {
	if p.ID == 0 {
		p.ID = common.UUIDint64()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	s.mirrorMutate(func(items []domain.Product) []domain.Product {
		return append(items, *p)
	})
	defer s.bus.Publish(TopicProductsChanged)

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if RemoteRejected(err) {
			return false, errors.Wrap(err, "create product rejected")
		}
		zap.L().Warn("product kept local only", zap.Int64("id", p.ID), zap.Error(err))
		_ = s.fb.MarkUnsynced(productsCollection, p.ID)
		return true, nil
	}
	return false, nil
}

func (s *ProductStore) Update(ctx context.Context, p *domain.Product) (local bool, err error) {
	p.UpdatedAt = time.Now()
	s.mirrorMutate(func(items []domain.Product) []domain.Product {
		for i := range items {
			if items[i].ID == p.ID {
				items[i] = *p
			}
		}
		return items
	})
	defer s.bus.Publish(TopicProductsChanged)

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		if RemoteRejected(err) {
			return false, errors.Wrap(err, "update product rejected")
		}
		zap.L().Warn("product update kept local only", zap.Int64("id", p.ID), zap.Error(err))
		_ = s.fb.MarkUnsynced(productsCollection, p.ID)
		return true, nil
	}
	return false, nil
}

func (s *ProductStore) Delete(ctx context.Context, id int64) (local bool, err error) {
	s.mirrorMutate(func(items []domain.Product) []domain.Product {
		out := items[:0]
		for _, it := range items {
			if it.ID != id {
				out = append(out, it)
			}
		}
		return out
	})
	defer s.bus.Publish(TopicProductsChanged)

	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{}).Error; err != nil {
		if RemoteRejected(err) {
			return false, errors.Wrap(err, "delete product rejected")
		}
		zap.L().Warn("product delete kept local only", zap.Int64("id", id), zap.Error(err))
		_ = s.fb.MarkUnsynced(productsCollection, id)
		return true, nil
	}
	return false, nil
}

// AdjustStock sets a product stock to newStock and appends the matching
// inventory movement, both inside one transaction.
func (s *ProductStore) AdjustStock(ctx context.Context, id int64, newStock int, reason string) (*domain.InventoryMovement, error) {
	if newStock < 0 {
		return nil, fmt.Errorf("stock cannot be negative: %d", newStock)
	}
	var mv domain.InventoryMovement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Product
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Product{}).Where("id = ?", id).
			Updates(map[string]interface{}{"stock": newStock, "updated_at": time.Now()}).Error; err != nil {
			return err
		}
		mtype := domain.MovementIn
		if newStock < p.Stock {
			mtype = domain.MovementOut
		}
		mv = domain.InventoryMovement{
			ID:            common.UUIDint64(),
			ProductID:     id,
			MovementType:  mtype,
			Quantity:      newStock - p.Stock,
			PreviousStock: p.Stock,
			NewStock:      newStock,
			Reason:        common.IfEmptyStr(reason, domain.MovementReasonAdjustment),
			ReferenceType: "adjustment",
			CreatedAt:     time.Now(),
		}
		return tx.Create(&mv).Error
	})
	if err != nil {
		return nil, err
	}
	s.bus.Publish(TopicProductsChanged)
	return &mv, nil
}

// LowStock returns products at or below their minimum threshold.
func (s *ProductStore) LowStock(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := s.db.WithContext(ctx).Where("stock <= min_stock").Order("stock").Find(&products).Error
	return products, err
}

func (s *ProductStore) mirrorMutate(fn func([]domain.Product) []domain.Product) {
	items := []domain.Product{}
	s.fb.ReadOr(productsCollection, &items)
	if err := s.fb.Write(productsCollection, fn(items)); err != nil {
		zap.L().Error("failed to update products mirror", zap.Error(err))
	}
}
