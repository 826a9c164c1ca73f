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

const salesCollection = "sales"

// SaleStore persists finalized sales. The multi-step finalize sequence (sale
// header, line items, stock decrement, movement log) runs inside a single
// database transaction: a failure on any line rolls the whole sale back, and
// the stock decrement is a conditional update so two concurrent sales can
// never both consume the same units.
type SaleStore struct {
	db    *gorm.DB
	fb    *fallback.Store
	bus   Bus
	cache listCache[domain.Sale]
}

func NewSaleStore(db *gorm.DB, fb *fallback.Store, bus Bus) *SaleStore {
	s := &SaleStore{db: db, fb: fb, bus: bus}
	_ = bus.Subscribe(TopicSalesChanged, s.cache.invalidate)
	return s
}

// Finalize commits the sale aggregate. Items must already carry their
// snapshots (name, unit price, quantity, line total).
//
// localOnly=true means the remote store was unreachable and the sale was
// accepted into the local mirror, marked unsynced. Business rejections
// (insufficient stock, constraint violations) return an error and leave no
// state anywhere.
func (s *SaleStore) Finalize(ctx context.Context, sale *domain.Sale) (localOnly bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(sale).Error; err != nil {
			return err
		}
		for i := range sale.Items {
			item := &sale.Items[i]
			item.SaleID = sale.ID
			if err := tx.Create(item).Error; err != nil {
				return err
			}
			if item.ProductID == nil {
				continue
			}
			mv, err := decrementStock(tx, *item.ProductID, item.Quantity, sale.ID)
			if err != nil {
				return err
			}
			zap.L().Debug("stock decremented",
				zap.Int64("product_id", *item.ProductID),
				zap.Int("previous", mv.PreviousStock),
				zap.Int("new", mv.NewStock))
		}
		return nil
	})
	switch {
	case err == nil:
		s.refreshMirrors(ctx)
		s.bus.Publish(TopicSalesChanged)
		s.bus.Publish(TopicProductsChanged)
		return false, nil
	case errors.Is(err, domain.ErrInsufficientStock) || RemoteRejected(err):
		return false, err
	default:
		// remote unreachable: keep the sale locally, flagged unsynced, and
		// apply the optimistic stock decrement to the products mirror
		zap.L().Warn("sale kept local only", zap.String("sale_number", sale.SaleNumber), zap.Error(err))
		s.acceptLocal(sale)
		return true, nil
	}
}

// decrementStock applies an atomic conditional decrement and appends the
// matching movement record. Zero rows affected means the remaining stock no
// longer covers the requested quantity.
func decrementStock(tx *gorm.DB, productID int64, qty int, saleID int64) (*domain.InventoryMovement, error) {
	res := tx.Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errors.Wrapf(domain.ErrInsufficientStock, "product %d qty %d", productID, qty)
	}
	// read back inside the same transaction to snapshot the stock pair
	var p domain.Product
	if err := tx.Select("stock").Where("id = ?", productID).First(&p).Error; err != nil {
		return nil, err
	}
	mv := saleMovement(productID, saleID, qty, p.Stock)
	if err := tx.Create(&mv).Error; err != nil {
		return nil, err
	}
	return &mv, nil
}

// saleMovement builds the audit row for a sale decrement. stockAfter is the
// product stock observed after the decrement, so the invariant
// NewStock == PreviousStock + Quantity holds with Quantity == -qty.
func saleMovement(productID, saleID int64, qty, stockAfter int) domain.InventoryMovement {
	return domain.InventoryMovement{
		ID:            common.UUIDint64(),
		ProductID:     productID,
		MovementType:  domain.MovementOut,
		Quantity:      -qty,
		PreviousStock: stockAfter + qty,
		NewStock:      stockAfter,
		Reason:        domain.MovementReasonSale,
		ReferenceID:   saleID,
		ReferenceType: "sale",
		CreatedAt:     time.Now(),
	}
}

// List returns sales newest first, optionally bounded by a date range.
func (s *SaleStore) List(ctx context.Context, from, to time.Time) (sales []domain.Sale, degraded bool, err error) {
	if from.IsZero() && to.IsZero() {
		if cached, ok := s.cache.get(); ok {
			return cached, false, nil
		}
	}
	q := s.db.WithContext(ctx).Preload("Items").Order("created_at DESC")
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at <= ?", to)
	}
	err = q.Find(&sales).Error
	if err != nil {
		zap.L().Warn("sales list degraded to local mirror", zap.Error(err))
		local := []domain.Sale{}
		s.fb.ReadOr(salesCollection, &local)
		return local, true, nil
	}
	if from.IsZero() && to.IsZero() {
		s.cache.set(sales)
		if werr := s.fb.Write(salesCollection, sales); werr == nil {
			_ = s.fb.ClearUnsynced(salesCollection)
		}
	}
	return sales, false, nil
}

func (s *SaleStore) Get(ctx context.Context, id int64) (*domain.Sale, error) {
	var sale domain.Sale
	if err := s.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&sale).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// Movements lists the inventory audit trail newest first.
func (s *SaleStore) Movements(ctx context.Context, productID int64, limit int) ([]domain.InventoryMovement, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	q := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if productID > 0 {
		q = q.Where("product_id = ?", productID)
	}
	var movements []domain.InventoryMovement
	err := q.Find(&movements).Error
	return movements, err
}

func (s *SaleStore) refreshMirrors(ctx context.Context) {
	var sales []domain.Sale
	if err := s.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&sales).Error; err == nil {
		_ = s.fb.Write(salesCollection, sales)
	}
	var products []domain.Product
	if err := s.db.WithContext(ctx).Order("name").Find(&products).Error; err == nil {
		_ = s.fb.Write(productsCollection, products)
	}
}

func (s *SaleStore) acceptLocal(sale *domain.Sale) {
	sales := []domain.Sale{}
	s.fb.ReadOr(salesCollection, &sales)
	_ = s.fb.Write(salesCollection, append([]domain.Sale{*sale}, sales...))
	_ = s.fb.MarkUnsynced(salesCollection, sale.ID)

	// optimistic stock decrement on the mirror so degraded reads stay coherent
	products := []domain.Product{}
	if s.fb.ReadOr(productsCollection, &products) {
		for _, item := range sale.Items {
			if item.ProductID == nil {
				continue
			}
			for i := range products {
				if products[i].ID == *item.ProductID {
					products[i].Stock -= item.Quantity
				}
			}
		}
		_ = s.fb.Write(productsCollection, products)
	}
	s.bus.Publish(TopicSalesChanged)
	s.bus.Publish(TopicProductsChanged)
}
