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

const quotesCollection = "quotes"

var quoteStatusTransitions = map[string][]string{
	domain.QuoteStatusDraft:    {domain.QuoteStatusSent, domain.QuoteStatusExpired},
	domain.QuoteStatusSent:     {domain.QuoteStatusAccepted, domain.QuoteStatusRejected, domain.QuoteStatusExpired},
	domain.QuoteStatusAccepted: {},
	domain.QuoteStatusRejected: {},
	domain.QuoteStatusExpired:  {},
}

// QuoteStore persists quotes with their items. Quotes never touch stock.
type QuoteStore struct {
	db    *gorm.DB
	fb    *fallback.Store
	bus   Bus
	cache listCache[domain.Quote]
}

func NewQuoteStore(db *gorm.DB, fb *fallback.Store, bus Bus) *QuoteStore {
	s := &QuoteStore{db: db, fb: fb, bus: bus}
	_ = bus.Subscribe(TopicQuotesChanged, s.cache.invalidate)
	return s
}

func (s *QuoteStore) List(ctx context.Context) (quotes []domain.Quote, degraded bool, err error) {
	if cached, ok := s.cache.get(); ok {
		return cached, false, nil
	}
	err = s.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&quotes).Error
	if err != nil {
		zap.L().Warn("quote list degraded to local mirror", zap.Error(err))
		local := []domain.Quote{}
		s.fb.ReadOr(quotesCollection, &local)
		return local, true, nil
	}
	s.cache.set(quotes)
	if werr := s.fb.Write(quotesCollection, quotes); werr == nil {
		_ = s.fb.ClearUnsynced(quotesCollection)
	}
	return quotes, false, nil
}

func (s *QuoteStore) Get(ctx context.Context, id int64) (*domain.Quote, error) {
	var q domain.Quote
	if err := s.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// Create persists the quote header and its items in one transaction,
// falling back to the local mirror when the remote store is unreachable.
func (s *QuoteStore) Create(ctx context.Context, q *domain.Quote) (local bool, err error) {
	if q.ID == 0 {
		q.ID = common.UUIDint64()
	}
	if q.QuoteNumber == "" {
		q.QuoteNumber = common.NextNumber("DEV")
	}
	q.Status = common.IfEmptyStr(q.Status, domain.QuoteStatusDraft)
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	for i := range q.Items {
		q.Items[i].ID = common.UUIDint64()
		q.Items[i].QuoteID = q.ID
		q.Items[i].Total = q.Items[i].UnitPrice * float64(q.Items[i].Quantity)
		q.Items[i].CreatedAt = q.CreatedAt
	}

	s.mirrorMutate(func(items []domain.Quote) []domain.Quote {
		return append([]domain.Quote{*q}, items...)
	})
	defer s.bus.Publish(TopicQuotesChanged)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(q).Error; err != nil {
			return err
		}
		for i := range q.Items {
			if err := tx.Create(&q.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if RemoteRejected(err) {
			return false, errors.Wrap(err, "create quote rejected")
		}
		zap.L().Warn("quote kept local only", zap.String("quote_number", q.QuoteNumber), zap.Error(err))
		_ = s.fb.MarkUnsynced(quotesCollection, q.ID)
		return true, nil
	}
	return false, nil
}

// SetStatus applies a status transition, rejecting moves the lifecycle does
// not allow (accepted/rejected/expired are terminal).
func (s *QuoteStore) SetStatus(ctx context.Context, id int64, status string) error {
	q, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	allowed := false
	for _, next := range quoteStatusTransitions[q.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.Errorf("quote %s cannot move from %s to %s", q.QuoteNumber, q.Status, status)
	}
	err = s.db.WithContext(ctx).Model(&domain.Quote{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
	if err != nil {
		return err
	}
	s.bus.Publish(TopicQuotesChanged)
	return nil
}

func (s *QuoteStore) mirrorMutate(fn func([]domain.Quote) []domain.Quote) {
	items := []domain.Quote{}
	s.fb.ReadOr(quotesCollection, &items)
	if err := s.fb.Write(quotesCollection, fn(items)); err != nil {
		zap.L().Error("failed to update quotes mirror", zap.Error(err))
	}
}
