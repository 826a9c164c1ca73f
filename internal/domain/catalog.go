package domain

import "time"

// Product is a stock-tracked catalog item sold at the counter.
// Stock is mutated by sale finalization and manual adjustments only.
type Product struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Category  string    `gorm:"size:100;index" json:"category" form:"category"`
	Price     float64   `json:"price" form:"price"`
	Stock     int       `json:"stock" form:"stock"`
	MinStock  int       `json:"min_stock" form:"min_stock"`
	MaxStock  int       `json:"max_stock" form:"max_stock"`
	Supplier  string    `gorm:"size:200" json:"supplier,omitempty" form:"supplier"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Service is an intangible catalog item, priced per unit, never stock-tracked.
type Service struct {
	ID          int64     `json:"id,string" form:"id"`
	Name        string    `gorm:"index" json:"name" form:"name"`
	Category    string    `gorm:"size:100;index" json:"category" form:"category"`
	Price       float64   `json:"price" form:"price"`
	Unit        string    `gorm:"size:50" json:"unit" form:"unit"`
	Description string    `gorm:"type:text" json:"description,omitempty" form:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Service) TableName() string {
	return "services"
}
