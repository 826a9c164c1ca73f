package pos

import (
	"github.com/pkg/errors"

	"github.com/comptoirlabs/comptoir/internal/domain"
)

// CatalogItem is the sum type of everything sellable at the counter. Stock
// rules apply to products only; exhaustive type switches keep that explicit.
type CatalogItem interface {
	catalogItem()
}

type ProductItem struct {
	Product domain.Product
}

type ServiceItem struct {
	Service domain.Service
}

func (ProductItem) catalogItem() {}
func (ServiceItem) catalogItem() {}

type LineKind string

const (
	LineProduct LineKind = "product"
	LineService LineKind = "service"
)

// Line is one cart entry. Name and unit price are snapshots taken when the
// item was added; stockCeiling is the product stock observed at that moment
// (zero for services, which have no ceiling).
type Line struct {
	ItemID       int64
	Kind         LineKind
	Name         string
	UnitPrice    float64
	Quantity     int
	Category     string
	stockCeiling int
}

// Totals is the computed pricing of a cart at a given discount.
type Totals struct {
	Subtotal       float64
	DiscountAmount float64
	Total          float64
}

// Cart accumulates lines for a single in-progress transaction. It is owned by
// one checkout session, never persisted, and lost when abandoned.
type Cart struct {
	lines        []Line
	customerName string
	discount     float64 // percent, 0-100
}

func NewCart() *Cart {
	return &Cart{}
}

// Add inserts the item with quantity 1, or increments the existing line.
// A product with no stock fails with ErrOutOfStock; incrementing past the
// product's stock fails with ErrInsufficientStock and leaves the cart
// unchanged.
func (c *Cart) Add(item CatalogItem) error {
	switch it := item.(type) {
	case ProductItem:
		if it.Product.Stock <= 0 {
			return errors.Wrap(domain.ErrOutOfStock, it.Product.Name)
		}
		if line := c.find(it.Product.ID, LineProduct); line != nil {
			if line.Quantity+1 > it.Product.Stock {
				return errors.Wrap(domain.ErrInsufficientStock, it.Product.Name)
			}
			line.Quantity++
			line.stockCeiling = it.Product.Stock
			return nil
		}
		c.lines = append(c.lines, Line{
			ItemID:       it.Product.ID,
			Kind:         LineProduct,
			Name:         it.Product.Name,
			UnitPrice:    it.Product.Price,
			Quantity:     1,
			Category:     it.Product.Category,
			stockCeiling: it.Product.Stock,
		})
		return nil
	case ServiceItem:
		if line := c.find(it.Service.ID, LineService); line != nil {
			line.Quantity++
			return nil
		}
		c.lines = append(c.lines, Line{
			ItemID:    it.Service.ID,
			Kind:      LineService,
			Name:      it.Service.Name,
			UnitPrice: it.Service.Price,
			Quantity:  1,
			Category:  it.Service.Category,
		})
		return nil
	default:
		return errors.Errorf("unknown catalog item %T", item)
	}
}

// SetQuantity sets the line quantity; zero or negative removes the line.
// Product lines keep the stock ceiling observed at add time.
func (c *Cart) SetQuantity(itemID int64, kind LineKind, quantity int) error {
	if quantity <= 0 {
		c.Remove(itemID, kind)
		return nil
	}
	line := c.find(itemID, kind)
	if line == nil {
		return errors.Errorf("no cart line for item %d", itemID)
	}
	if line.Kind == LineProduct && quantity > line.stockCeiling {
		return errors.Wrap(domain.ErrInsufficientStock, line.Name)
	}
	line.Quantity = quantity
	return nil
}

// Remove deletes the line unconditionally.
func (c *Cart) Remove(itemID int64, kind LineKind) {
	out := c.lines[:0]
	for _, l := range c.lines {
		if l.ItemID == itemID && l.Kind == kind {
			continue
		}
		out = append(out, l)
	}
	c.lines = out
}

// Clear empties the cart and resets customer name and discount.
func (c *Cart) Clear() {
	c.lines = nil
	c.customerName = ""
	c.discount = 0
}

// SetDiscount rejects percents outside [0,100].
func (c *Cart) SetDiscount(percent float64) error {
	if percent < 0 || percent > 100 {
		return domain.ErrInvalidDiscount
	}
	c.discount = percent
	return nil
}

func (c *Cart) SetCustomerName(name string) {
	c.customerName = name
}

func (c *Cart) CustomerName() string { return c.customerName }
func (c *Cart) Discount() float64    { return c.discount }
func (c *Cart) Len() int             { return len(c.lines) }

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Totals computes subtotal, discount amount and total.
func (c *Cart) Totals() Totals {
	var subtotal float64
	for _, l := range c.lines {
		subtotal += l.UnitPrice * float64(l.Quantity)
	}
	discountAmount := subtotal * c.discount / 100
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Total:          subtotal - discountAmount,
	}
}

func (c *Cart) find(itemID int64, kind LineKind) *Line {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID && c.lines[i].Kind == kind {
			return &c.lines[i]
		}
	}
	return nil
}
