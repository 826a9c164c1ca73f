package adminapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/internal/webserver"
)

type productPayload struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    *int    `json:"stock"`
	MinStock int     `json:"min_stock"`
	MaxStock int     `json:"max_stock"`
	Supplier string  `json:"supplier"`
}

func (p *productPayload) validate() (string, bool) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return "Name is required", false
	}
	if p.Price < 0 {
		return "Price must be >= 0", false
	}
	if p.Stock != nil && *p.Stock < 0 {
		return "Stock must be >= 0", false
	}
	if p.MinStock < 0 || p.MaxStock < p.MinStock {
		return "Stock bounds must satisfy 0 <= min_stock <= max_stock", false
	}
	return "", true
}

// registerProductRoutes registers product CRUD and stock adjustment endpoints
func registerProductRoutes() {
	webserver.ApiGET("/crm/products", listProducts)
	webserver.ApiGET("/crm/products/:id", getProduct)
	webserver.ApiPOST("/crm/products", createProduct)
	webserver.ApiPUT("/crm/products/:id", updateProduct)
	webserver.ApiDELETE("/crm/products/:id", deleteProduct)
	webserver.ApiPOST("/crm/products/:id/stock", adjustProductStock)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	products, degraded, err := GetApp(c).Products().List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	// Filters: q matches name, category is exact
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		filtered := products[:0]
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	if category := strings.TrimSpace(c.QueryParam("category")); category != "" {
		filtered := products[:0]
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	// whitelist allowed sort fields
	switch c.QueryParam("sort") {
	case "price":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case "stock":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Stock < products[j].Stock })
	case "", "name":
		// store already orders by name
	}

	total := int64(len(products))
	start := (page - 1) * pageSize
	if start > len(products) {
		start = len(products)
	}
	end := start + pageSize
	if end > len(products) {
		end = len(products)
	}

	if degraded {
		return okDegraded(c, products[start:end], true)
	}
	return paged(c, products[start:end], total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := GetApp(c).Products().Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg, valid := payload.validate(); !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	stock := 0
	if payload.Stock != nil {
		stock = *payload.Stock
	}
	p := domain.Product{
		Name:     payload.Name,
		Category: strings.TrimSpace(payload.Category),
		Price:    payload.Price,
		Stock:    stock,
		MinStock: payload.MinStock,
		MaxStock: payload.MaxStock,
		Supplier: strings.TrimSpace(payload.Supplier),
	}
	local, err := GetApp(c).Products().Create(c.Request().Context(), &p)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to create product", err.Error())
	}
	return okLocal(c, p, local)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := GetApp(c).Products().Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg, valid := payload.validate(); !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	p.Name = payload.Name
	p.Category = strings.TrimSpace(payload.Category)
	p.Price = payload.Price
	p.MinStock = payload.MinStock
	p.MaxStock = payload.MaxStock
	p.Supplier = strings.TrimSpace(payload.Supplier)
	// stock changes go through the adjustment endpoint so the movement log
	// stays complete; a stock value here is ignored

	local, err := GetApp(c).Products().Update(c.Request().Context(), p)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to update product", err.Error())
	}
	return okLocal(c, p, local)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	local, err := GetApp(c).Products().Delete(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to delete product", err.Error())
	}
	return okLocal(c, echo.Map{"id": id}, local)
}

type stockAdjustPayload struct {
	NewStock int    `json:"new_stock"`
	Reason   string `json:"reason"`
}

func adjustProductStock(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload stockAdjustPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse adjustment", err.Error())
	}
	mv, err := GetApp(c).Products().AdjustStock(c.Request().Context(), id, payload.NewStock, payload.Reason)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "ADJUST_FAILED", "Failed to adjust stock", err.Error())
	}
	return ok(c, mv)
}
