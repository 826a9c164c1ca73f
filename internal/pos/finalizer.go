package pos

import (
	"context"
	"time"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/pkg/common"
)

// SaleWriter commits a fully-built sale aggregate. The store implementation
// runs it as one transaction; localOnly reports degraded local acceptance.
type SaleWriter interface {
	Finalize(ctx context.Context, sale *domain.Sale) (localOnly bool, err error)
}

// Finalizer converts a non-empty cart into a persisted sale with its side
// effects: line items, stock decrements, inventory movements.
type Finalizer struct {
	writer SaleWriter
}

func NewFinalizer(w SaleWriter) *Finalizer {
	return &Finalizer{writer: w}
}

// Result carries the persisted sale and whether it was only accepted locally.
type Result struct {
	Sale      *domain.Sale
	LocalOnly bool
}

// Finalize snapshots the cart into a Sale and commits it. The cart is cleared
// only on success; validation failures leave it untouched.
func (f *Finalizer) Finalize(ctx context.Context, cart *Cart, customerName, customerPhone, paymentMethod string) (*Result, error) {
	if cart.Len() == 0 {
		return nil, domain.ErrEmptyCart
	}

	totals := cart.Totals()
	now := time.Now()
	sale := &domain.Sale{
		ID:            common.UUIDint64(),
		SaleNumber:    common.NextNumber("INV"),
		CustomerName:  common.IfEmptyStr(customerName, cart.CustomerName()),
		CustomerPhone: customerPhone,
		Subtotal:      totals.Subtotal,
		Discount:      cart.Discount(),
		Total:         totals.Total,
		PaymentMethod: common.IfEmptyStr(paymentMethod, domain.PaymentCash),
		Status:        domain.SaleStatusCompleted,
		CreatedAt:     now,
	}

	for _, line := range cart.Lines() {
		item := domain.SaleItem{
			ID:          common.UUIDint64(),
			SaleID:      sale.ID,
			ProductName: line.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Total:       line.UnitPrice * float64(line.Quantity),
			CreatedAt:   now,
		}
		if line.Kind == LineProduct {
			id := line.ItemID
			item.ProductID = &id
		}
		sale.Items = append(sale.Items, item)
	}

	localOnly, err := f.writer.Finalize(ctx, sale)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	return &Result{Sale: sale, LocalOnly: localOnly}, nil
}
