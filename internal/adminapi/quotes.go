package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/internal/webserver"
)

type quoteItemPayload struct {
	ProductID   *int64  `json:"product_id,string,omitempty"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type quotePayload struct {
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	CustomerEmail string             `json:"customer_email"`
	Discount      float64            `json:"discount"`
	ValidUntil    string             `json:"valid_until"`
	Items         []quoteItemPayload `json:"items"`
}

func registerQuoteRoutes() {
	webserver.ApiGET("/crm/quotes", listQuotes)
	webserver.ApiGET("/crm/quotes/:id", getQuote)
	webserver.ApiPOST("/crm/quotes", createQuote)
	webserver.ApiPOST("/crm/quotes/:id/status", setQuoteStatus)
}

func listQuotes(c echo.Context) error {
	quotes, degraded, err := GetApp(c).Quotes().List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query quotes", err.Error())
	}
	if status := c.QueryParam("status"); status != "" {
		filtered := quotes[:0]
		for _, q := range quotes {
			if q.Status == status {
				filtered = append(filtered, q)
			}
		}
		quotes = filtered
	}
	return okDegraded(c, quotes, degraded)
}

func getQuote(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid quote ID", nil)
	}
	q, err := GetApp(c).Quotes().Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Quote not found", nil)
	}
	return ok(c, q)
}

// createQuote builds the quote aggregate server side. Totals are computed
// here, never taken from the client.
func createQuote(c echo.Context) error {
	var payload quotePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse quote", err.Error())
	}
	if len(payload.Items) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Quote needs at least one item", nil)
	}
	if payload.Discount < 0 || payload.Discount > 100 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Discount percent must be between 0 and 100", nil)
	}

	validUntil := time.Now().AddDate(0, 1, 0)
	if payload.ValidUntil != "" {
		parsed, err := dateparse.ParseLocal(payload.ValidUntil)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_DATE", "Invalid valid_until date", nil)
		}
		validUntil = parsed
	}

	q := domain.Quote{
		CustomerName:  strings.TrimSpace(payload.CustomerName),
		CustomerPhone: payload.CustomerPhone,
		CustomerEmail: payload.CustomerEmail,
		Discount:      payload.Discount,
		ValidUntil:    validUntil,
	}
	for _, item := range payload.Items {
		if item.Quantity <= 0 || item.UnitPrice < 0 || strings.TrimSpace(item.ProductName) == "" {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Quote items need a name, a positive quantity and a non-negative price", nil)
		}
		q.Items = append(q.Items, domain.QuoteItem{
			ProductID:   item.ProductID,
			ProductName: strings.TrimSpace(item.ProductName),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
		q.Subtotal += item.UnitPrice * float64(item.Quantity)
	}
	q.Total = q.Subtotal * (100 - q.Discount) / 100

	local, err := GetApp(c).Quotes().Create(c.Request().Context(), &q)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to create quote", err.Error())
	}
	return okLocal(c, q, local)
}

func setQuoteStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid quote ID", nil)
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", err.Error())
	}
	if err := GetApp(c).Quotes().SetStatus(c.Request().Context(), id, payload.Status); err != nil {
		return fail(c, http.StatusConflict, "INVALID_TRANSITION", "Status change not allowed", err.Error())
	}
	q, err := GetApp(c).Quotes().Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to reload quote", err.Error())
	}
	return ok(c, q)
}
