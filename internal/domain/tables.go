package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	// Catalog
	&Product{},
	&Service{},
	// Sales
	&Sale{},
	&SaleItem{},
	&InventoryMovement{},
	// Billing
	&Quote{},
	&QuoteItem{},
	&Expense{},
	// Formations
	&Formation{},
	&Student{},
	&StudentEnrollment{},
}
