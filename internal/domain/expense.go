package domain

import "time"

// Expense is an outgoing cash entry recorded from the register or back office.
type Expense struct {
	ID            int64     `json:"id,string" form:"id"`
	Date          time.Time `gorm:"index" json:"date" form:"date"`
	Description   string    `gorm:"size:500" json:"description" form:"description"`
	Category      string    `gorm:"size:100;index" json:"category" form:"category"`
	Amount        float64   `json:"amount" form:"amount"`
	PaymentMethod string    `gorm:"size:20" json:"payment_method" form:"payment_method"`
	ReceiptNumber string    `gorm:"size:64" json:"receipt_number,omitempty" form:"receipt_number"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty" form:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}
