package domain

import "time"

const (
	PaymentCash   = "cash"
	PaymentBank   = "bank"
	PaymentMobile = "mobile"
)

const (
	SaleStatusCompleted = "completed"
)

// Sale is the immutable record of a completed counter transaction.
// Totals are computed once at finalize time and never re-derived.
type Sale struct {
	ID            int64      `json:"id,string" form:"id"`
	SaleNumber    string     `gorm:"size:64;uniqueIndex" json:"sale_number"`
	CustomerName  string     `gorm:"size:200" json:"customer_name,omitempty" form:"customer_name"`
	CustomerPhone string     `gorm:"size:50" json:"customer_phone,omitempty" form:"customer_phone"`
	Subtotal      float64    `json:"subtotal"`
	Discount      float64    `json:"discount"` // percent, 0-100
	Total         float64    `json:"total"`
	PaymentMethod string     `gorm:"size:20" json:"payment_method"`
	Status        string     `gorm:"size:20;default:'completed'" json:"status"`
	Items         []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
}

func (Sale) TableName() string {
	return "sales"
}

// SaleItem snapshots name and unit price at time of sale; later catalog edits
// must never change historical lines.
type SaleItem struct {
	ID          int64     `json:"id,string"`
	SaleID      int64     `gorm:"index" json:"sale_id,string"`
	ProductID   *int64    `gorm:"index" json:"product_id,omitempty"` // nil for service lines
	ProductName string    `gorm:"size:200" json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Total       float64   `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

func (SaleItem) TableName() string {
	return "sale_items"
}
