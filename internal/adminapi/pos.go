package adminapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/internal/pos"
	"github.com/comptoirlabs/comptoir/internal/webserver"
)

type checkoutLine struct {
	ItemID   int64  `json:"item_id,string"`
	Kind     string `json:"kind"` // product or service
	Quantity int    `json:"quantity"`
}

type checkoutPayload struct {
	Lines         []checkoutLine `json:"lines"`
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone"`
	Discount      float64        `json:"discount"`
	PaymentMethod string         `json:"payment_method"`
}

func registerPosRoutes() {
	webserver.ApiPOST("/pos/checkout", checkout)
	webserver.ApiPOST("/pos/preview", previewCart)
}

// buildCart replays the request lines into a fresh cart, re-reading each item
// from the catalog so prices and stock ceilings come from the server, never
// from the client.
func buildCart(c echo.Context, payload *checkoutPayload) (*pos.Cart, error) {
	ctx := c.Request().Context()
	cart := pos.NewCart()
	for _, line := range payload.Lines {
		if line.Quantity <= 0 {
			return nil, errors.New("line quantity must be positive")
		}
		switch line.Kind {
		case "product":
			p, err := GetApp(c).Products().Get(ctx, line.ItemID)
			if err != nil {
				return nil, errors.New("unknown product in cart")
			}
			if err := cart.Add(pos.ProductItem{Product: *p}); err != nil {
				return nil, err
			}
			if err := cart.SetQuantity(p.ID, pos.LineProduct, line.Quantity); err != nil {
				return nil, err
			}
		case "service":
			sv, err := GetApp(c).Services().Get(ctx, line.ItemID)
			if err != nil {
				return nil, errors.New("unknown service in cart")
			}
			if err := cart.Add(pos.ServiceItem{Service: *sv}); err != nil {
				return nil, err
			}
			if err := cart.SetQuantity(sv.ID, pos.LineService, line.Quantity); err != nil {
				return nil, err
			}
		default:
			return nil, errors.New("line kind must be product or service")
		}
	}
	if err := cart.SetDiscount(payload.Discount); err != nil {
		return nil, err
	}
	cart.SetCustomerName(payload.CustomerName)
	return cart, nil
}

// previewCart validates the lines and returns computed totals without
// committing anything. The register uses it to render the running total.
func previewCart(c echo.Context) error {
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart", err.Error())
	}
	cart, err := buildCart(c, &payload)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_CART", err.Error(), nil)
	}
	totals := cart.Totals()
	return ok(c, echo.Map{
		"lines":           cart.Lines(),
		"subtotal":        totals.Subtotal,
		"discount_amount": totals.DiscountAmount,
		"total":           totals.Total,
	})
}

func checkout(c echo.Context) error {
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart", err.Error())
	}
	cart, err := buildCart(c, &payload)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_CART", err.Error(), nil)
	}

	result, err := GetApp(c).Finalizer().Finalize(
		c.Request().Context(), cart,
		payload.CustomerName, payload.CustomerPhone, payload.PaymentMethod,
	)
	switch {
	case err == nil:
		return okLocal(c, result.Sale, result.LocalOnly)
	case errors.Is(err, domain.ErrEmptyCart):
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cart has no lines", nil)
	case errors.Is(err, domain.ErrInsufficientStock):
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough stock to complete the sale", err.Error())
	default:
		return fail(c, http.StatusUnprocessableEntity, "CHECKOUT_FAILED", "Failed to finalize sale", err.Error())
	}
}
