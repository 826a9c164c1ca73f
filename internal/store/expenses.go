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

const expensesCollection = "expenses"

type ExpenseStore struct {
	db    *gorm.DB
	fb    *fallback.Store
	bus   Bus
	cache listCache[domain.Expense]
}

func NewExpenseStore(db *gorm.DB, fb *fallback.Store, bus Bus) *ExpenseStore {
	s := &ExpenseStore{db: db, fb: fb, bus: bus}
	_ = bus.Subscribe(TopicExpensesChanged, s.cache.invalidate)
	return s
}

// List returns expenses newest first, optionally bounded by a date range.
func (s *ExpenseStore) List(ctx context.Context, from, to time.Time) (expenses []domain.Expense, degraded bool, err error) {
	if from.IsZero() && to.IsZero() {
		if cached, ok := s.cache.get(); ok {
			return cached, false, nil
		}
	}
	q := s.db.WithContext(ctx).Order("date DESC")
	if !from.IsZero() {
		q = q.Where("date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("date <= ?", to)
	}
	err = q.Find(&expenses).Error
	if err != nil {
		zap.L().Warn("expense list degraded to local mirror", zap.Error(err))
		local := []domain.Expense{}
		s.fb.ReadOr(expensesCollection, &local)
		return local, true, nil
	}
	if from.IsZero() && to.IsZero() {
		s.cache.set(expenses)
		if werr := s.fb.Write(expensesCollection, expenses); werr == nil {
			_ = s.fb.ClearUnsynced(expensesCollection)
		}
	}
	return expenses, false, nil
}

func (s *ExpenseStore) Create(ctx context.Context, e *domain.Expense) (local bool, err error) {
	if e.ID == 0 {
		e.ID = common.UUIDint64()
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	s.mirrorMutate(func(items []domain.Expense) []domain.Expense {
		return append([]domain.Expense{*e}, items...)
	})
	defer s.bus.Publish(TopicExpensesChanged)

	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		if RemoteRejected(err) {
			return false, errors.Wrap(err, "create expense rejected")
		}
		zap.L().Warn("expense kept local only", zap.Int64("id", e.ID), zap.Error(err))
		_ = s.fb.MarkUnsynced(expensesCollection, e.ID)
		return true, nil
	}
	return false, nil
}

func (s *ExpenseStore) Update(ctx context.Context, e *domain.Expense) (local bool, err error) {
	e.UpdatedAt = time.Now()
	s.mirrorMutate(func(items []domain.Expense) []domain.Expense {
		for i := range items {
			if items[i].ID == e.ID {
				items[i] = *e
			}
		}
		return items
	})
	defer s.bus.Publish(TopicExpensesChanged)

	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		if RemoteRejected(err) {
			return false, errors.Wrap(err, "update expense rejected")
		}
		_ = s.fb.MarkUnsynced(expensesCollection, e.ID)
		return true, nil
	}
	return false, nil
}

func (s *ExpenseStore) Delete(ctx context.Context, id int64) (local bool, err error) {
	s.mirrorMutate(func(items []domain.Expense) []domain.Expense {
		out := items[:0]
		for _, it := range items {
			if it.ID != id {
				out = append(out, it)
			}
		}
		return out
	})
	defer s.bus.Publish(TopicExpensesChanged)

	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Expense{}).Error; err != nil {
		if RemoteRejected(err) {
			return false, errors.Wrap(err, "delete expense rejected")
		}
		_ = s.fb.MarkUnsynced(expensesCollection, id)
		return true, nil
	}
	return false, nil
}

func (s *ExpenseStore) mirrorMutate(fn func([]domain.Expense) []domain.Expense) {
	items := []domain.Expense{}
	s.fb.ReadOr(expensesCollection, &items)
	if err := s.fb.Write(expensesCollection, fn(items)); err != nil {
		zap.L().Error("failed to update expenses mirror", zap.Error(err))
	}
}
