package domain

import "time"

const (
	QuoteStatusDraft    = "draft"
	QuoteStatusSent     = "sent"
	QuoteStatusAccepted = "accepted"
	QuoteStatusRejected = "rejected"
	QuoteStatusExpired  = "expired"
)

// Quote is a priced offer; it never touches stock.
type Quote struct {
	ID            int64       `json:"id,string" form:"id"`
	QuoteNumber   string      `gorm:"size:64;uniqueIndex" json:"quote_number"`
	CustomerName  string      `gorm:"size:200" json:"customer_name,omitempty" form:"customer_name"`
	CustomerPhone string      `gorm:"size:50" json:"customer_phone,omitempty" form:"customer_phone"`
	CustomerEmail string      `gorm:"size:200" json:"customer_email,omitempty" form:"customer_email"`
	Subtotal      float64     `json:"subtotal"`
	Discount      float64     `json:"discount"`
	Total         float64     `json:"total"`
	Status        string      `gorm:"size:20;index;default:'draft'" json:"status"`
	ValidUntil    time.Time   `json:"valid_until"`
	Items         []QuoteItem `gorm:"foreignKey:QuoteID" json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (Quote) TableName() string {
	return "quotes"
}

type QuoteItem struct {
	ID          int64     `json:"id,string"`
	QuoteID     int64     `gorm:"index" json:"quote_id,string"`
	ProductID   *int64    `gorm:"index" json:"product_id,omitempty"`
	ProductName string    `gorm:"size:200" json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Total       float64   `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

func (QuoteItem) TableName() string {
	return "quote_items"
}
