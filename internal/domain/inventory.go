package domain

import "time"

const (
	MovementIn  = "in"
	MovementOut = "out"
)

const (
	MovementReasonSale       = "Sale"
	MovementReasonAdjustment = "Adjustment"
)

// InventoryMovement is an append-only audit entry for every stock change.
// Invariant: NewStock == PreviousStock + Quantity (Quantity is signed).
type InventoryMovement struct {
	ID            int64     `json:"id,string"`
	ProductID     int64     `gorm:"index" json:"product_id,string"`
	MovementType  string    `gorm:"size:10" json:"movement_type"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	Reason        string    `gorm:"size:100" json:"reason"`
	ReferenceID   int64     `gorm:"index" json:"reference_id,string"`
	ReferenceType string    `gorm:"size:20" json:"reference_type"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (InventoryMovement) TableName() string {
	return "inventory_movements"
}
