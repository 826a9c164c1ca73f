package store

import (
	"testing"

	"github.com/comptoirlabs/comptoir/internal/domain"
)

func TestSaleMovementArithmetic(t *testing.T) {
	// stock 10, sell 3: decrement leaves 7
	mv := saleMovement(5, 1001, 3, 7)

	if mv.Quantity != -3 {
		t.Errorf("quantity must be the negated line quantity, got %d", mv.Quantity)
	}
	if mv.PreviousStock != 10 {
		t.Errorf("previous stock: expected 10, got %d", mv.PreviousStock)
	}
	if mv.NewStock != 7 {
		t.Errorf("new stock: expected 7, got %d", mv.NewStock)
	}
	if mv.NewStock != mv.PreviousStock+mv.Quantity {
		t.Errorf("invariant violated: %d != %d + %d", mv.NewStock, mv.PreviousStock, mv.Quantity)
	}
	if mv.MovementType != domain.MovementOut {
		t.Errorf("movement type: got %q", mv.MovementType)
	}
	if mv.Reason != domain.MovementReasonSale {
		t.Errorf("reason: got %q", mv.Reason)
	}
	if mv.ReferenceID != 1001 || mv.ReferenceType != "sale" {
		t.Errorf("reference: got %d/%q", mv.ReferenceID, mv.ReferenceType)
	}
	if mv.ProductID != 5 {
		t.Errorf("product id: got %d", mv.ProductID)
	}
	if mv.ID == 0 {
		t.Error("movement must get a generated id")
	}
}

func TestSaleMovementInvariantAcrossQuantities(t *testing.T) {
	for qty := 1; qty <= 25; qty++ {
		for after := 0; after <= 10; after++ {
			mv := saleMovement(1, 2, qty, after)
			if mv.NewStock != mv.PreviousStock+mv.Quantity {
				t.Fatalf("qty=%d after=%d: %d != %d + %d",
					qty, after, mv.NewStock, mv.PreviousStock, mv.Quantity)
			}
			if mv.Quantity != -qty {
				t.Fatalf("qty=%d: movement quantity %d", qty, mv.Quantity)
			}
		}
	}
}
