package pos

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/comptoirlabs/comptoir/internal/domain"
)

type fakeWriter struct {
	sale      *domain.Sale
	localOnly bool
	err       error
}

func (f *fakeWriter) Finalize(ctx context.Context, sale *domain.Sale) (bool, error) {
	f.sale = sale
	return f.localOnly, f.err
}

func filledCart(t *testing.T) *Cart {
	t.Helper()
	cart := NewCart()
	if err := cart.Add(testProduct(1, "Savon", 500, 10)); err != nil {
		t.Fatal(err)
	}
	if err := cart.SetQuantity(1, LineProduct, 2); err != nil {
		t.Fatal(err)
	}
	if err := cart.Add(testService(2, "Livraison", 1000)); err != nil {
		t.Fatal(err)
	}
	return cart
}

func TestFinalizeEmptyCart(t *testing.T) {
	f := NewFinalizer(&fakeWriter{})
	_, err := f.Finalize(context.Background(), NewCart(), "", "", "")
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestFinalizeBuildsSale(t *testing.T) {
	w := &fakeWriter{}
	f := NewFinalizer(w)
	cart := filledCart(t)
	if err := cart.SetDiscount(10); err != nil {
		t.Fatal(err)
	}

	result, err := f.Finalize(context.Background(), cart, "Awa", "771234567", domain.PaymentMobile)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	sale := result.Sale
	if sale != w.sale {
		t.Fatal("writer must receive the returned sale")
	}
	if sale.ID == 0 {
		t.Error("sale must get a generated id")
	}
	if !strings.HasPrefix(sale.SaleNumber, "INV-") {
		t.Errorf("sale number must carry the INV prefix, got %q", sale.SaleNumber)
	}
	if sale.Subtotal != 2000 || sale.Total != 1800 {
		t.Errorf("totals: expected 2000/1800, got %v/%v", sale.Subtotal, sale.Total)
	}
	if sale.Discount != 10 {
		t.Errorf("discount percent: expected 10, got %v", sale.Discount)
	}
	if sale.PaymentMethod != domain.PaymentMobile {
		t.Errorf("payment method: got %q", sale.PaymentMethod)
	}
	if sale.Status != domain.SaleStatusCompleted {
		t.Errorf("status: got %q", sale.Status)
	}
	if len(sale.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(sale.Items))
	}
	// product line carries the catalog reference, service line does not
	if sale.Items[0].ProductID == nil || *sale.Items[0].ProductID != 1 {
		t.Error("product line must reference the product")
	}
	if sale.Items[1].ProductID != nil {
		t.Error("service line must have a nil product reference")
	}
	if sale.Items[0].Total != 1000 {
		t.Errorf("line total: expected 1000, got %v", sale.Items[0].Total)
	}
	if cart.Len() != 0 {
		t.Error("cart must be cleared after a successful finalize")
	}
}

func TestFinalizeDefaultsPaymentToCash(t *testing.T) {
	w := &fakeWriter{}
	f := NewFinalizer(w)
	result, err := f.Finalize(context.Background(), filledCart(t), "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if result.Sale.PaymentMethod != domain.PaymentCash {
		t.Errorf("expected cash default, got %q", result.Sale.PaymentMethod)
	}
}

func TestFinalizeWriterFailureKeepsCart(t *testing.T) {
	w := &fakeWriter{err: errors.New("insert rejected")}
	f := NewFinalizer(w)
	cart := filledCart(t)

	_, err := f.Finalize(context.Background(), cart, "", "", "")
	if err == nil {
		t.Fatal("expected writer error to propagate")
	}
	if cart.Len() != 2 {
		t.Errorf("failed finalize must leave the cart intact, got %d lines", cart.Len())
	}
}

func TestFinalizeLocalOnlyFlag(t *testing.T) {
	w := &fakeWriter{localOnly: true}
	f := NewFinalizer(w)
	result, err := f.Finalize(context.Background(), filledCart(t), "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if !result.LocalOnly {
		t.Error("local acceptance must be surfaced to the caller")
	}
}
