package pos

import (
	"errors"
	"testing"

	"github.com/comptoirlabs/comptoir/internal/domain"
)

func testProduct(id int64, name string, price float64, stock int) ProductItem {
	return ProductItem{Product: domain.Product{ID: id, Name: name, Price: price, Stock: stock}}
}

func testService(id int64, name string, price float64) ServiceItem {
	return ServiceItem{Service: domain.Service{ID: id, Name: name, Price: price}}
}

func TestCartAddMergesLines(t *testing.T) {
	cart := NewCart()
	item := testProduct(1, "Savon", 500, 10)

	if err := cart.Add(item); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := cart.Add(item); err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	lines := cart.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", lines[0].Quantity)
	}
}

func TestCartAddOutOfStock(t *testing.T) {
	cart := NewCart()
	err := cart.Add(testProduct(1, "Savon", 500, 0))
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	if cart.Len() != 0 {
		t.Errorf("failed add must leave the cart empty")
	}
}

func TestCartAddRespectsStockCeiling(t *testing.T) {
	cart := NewCart()
	item := testProduct(1, "Savon", 500, 2)

	if err := cart.Add(item); err != nil {
		t.Fatalf("add 1: %v", err)
	}
	if err := cart.Add(item); err != nil {
		t.Fatalf("add 2: %v", err)
	}
	err := cart.Add(item)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := cart.Lines()[0].Quantity; got != 2 {
		t.Errorf("failed increment must not change quantity, got %d", got)
	}
}

func TestCartServicesHaveNoCeiling(t *testing.T) {
	cart := NewCart()
	sv := testService(7, "Reparation", 2500)
	if err := cart.Add(sv); err != nil {
		t.Fatalf("add service: %v", err)
	}
	if err := cart.SetQuantity(7, LineService, 999); err != nil {
		t.Fatalf("services must accept any quantity: %v", err)
	}
}

func TestCartSetQuantity(t *testing.T) {
	cart := NewCart()
	if err := cart.Add(testProduct(1, "Savon", 500, 5)); err != nil {
		t.Fatal(err)
	}

	if err := cart.SetQuantity(1, LineProduct, 5); err != nil {
		t.Fatalf("quantity at ceiling must be allowed: %v", err)
	}
	if err := cart.SetQuantity(1, LineProduct, 6); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := cart.Lines()[0].Quantity; got != 5 {
		t.Errorf("rejected update must keep previous quantity, got %d", got)
	}

	// zero removes the line
	if err := cart.SetQuantity(1, LineProduct, 0); err != nil {
		t.Fatal(err)
	}
	if cart.Len() != 0 {
		t.Errorf("expected empty cart after zero quantity")
	}
}

func TestCartDiscountBounds(t *testing.T) {
	cart := NewCart()
	for _, bad := range []float64{-1, 100.5, 200} {
		if err := cart.SetDiscount(bad); !errors.Is(err, domain.ErrInvalidDiscount) {
			t.Errorf("discount %v: expected ErrInvalidDiscount, got %v", bad, err)
		}
	}
	for _, okv := range []float64{0, 50, 100} {
		if err := cart.SetDiscount(okv); err != nil {
			t.Errorf("discount %v: unexpected error %v", okv, err)
		}
	}
}

func TestCartTotals(t *testing.T) {
	cart := NewCart()
	if err := cart.Add(testProduct(1, "Savon", 500, 10)); err != nil {
		t.Fatal(err)
	}
	if err := cart.SetQuantity(1, LineProduct, 3); err != nil {
		t.Fatal(err)
	}
	if err := cart.Add(testService(2, "Livraison", 1000)); err != nil {
		t.Fatal(err)
	}
	if err := cart.SetDiscount(10); err != nil {
		t.Fatal(err)
	}

	totals := cart.Totals()
	if totals.Subtotal != 2500 {
		t.Errorf("subtotal: expected 2500, got %v", totals.Subtotal)
	}
	if totals.DiscountAmount != 250 {
		t.Errorf("discount amount: expected 250, got %v", totals.DiscountAmount)
	}
	if totals.Total != 2250 {
		t.Errorf("total: expected 2250, got %v", totals.Total)
	}
}

func TestCartPriceSnapshot(t *testing.T) {
	cart := NewCart()
	p := testProduct(1, "Savon", 500, 10)
	if err := cart.Add(p); err != nil {
		t.Fatal(err)
	}
	// catalog price change after add must not affect the line
	p.Product.Price = 900
	if got := cart.Lines()[0].UnitPrice; got != 500 {
		t.Errorf("unit price must be snapshot at add time, got %v", got)
	}
}

func TestCartClear(t *testing.T) {
	cart := NewCart()
	if err := cart.Add(testProduct(1, "Savon", 500, 10)); err != nil {
		t.Fatal(err)
	}
	cart.SetCustomerName("Awa")
	if err := cart.SetDiscount(5); err != nil {
		t.Fatal(err)
	}
	cart.Clear()
	if cart.Len() != 0 || cart.CustomerName() != "" || cart.Discount() != 0 {
		t.Errorf("clear must reset lines, customer and discount")
	}
}

func TestCartLinesReturnsCopy(t *testing.T) {
	cart := NewCart()
	if err := cart.Add(testProduct(1, "Savon", 500, 10)); err != nil {
		t.Fatal(err)
	}
	lines := cart.Lines()
	lines[0].Quantity = 99
	if got := cart.Lines()[0].Quantity; got != 1 {
		t.Errorf("mutating the returned slice must not affect the cart, got %d", got)
	}
}
