package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/internal/webserver"
)

func registerSaleRoutes() {
	webserver.ApiGET("/crm/sales", listSales)
	webserver.ApiGET("/crm/sales/:id", getSale)
	webserver.ApiGET("/crm/sales/:id/invoice", saleInvoice)
}

// parseDateRange reads optional from/to query params. Missing values default
// to the open range.
func parseDateRange(c echo.Context) (from, to time.Time, err error) {
	if v := c.QueryParam("from"); v != "" {
		from, err = dateparse.ParseLocal(v)
		if err != nil {
			return from, to, fmt.Errorf("invalid from date: %s", v)
		}
	}
	if v := c.QueryParam("to"); v != "" {
		to, err = dateparse.ParseLocal(v)
		if err != nil {
			return from, to, fmt.Errorf("invalid to date: %s", v)
		}
	}
	return from, to, nil
}

func listSales(c echo.Context) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DATE", err.Error(), nil)
	}
	sales, degraded, err := GetApp(c).Sales().List(c.Request().Context(), from, to)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sales", err.Error())
	}
	if pm := c.QueryParam("payment_method"); pm != "" {
		filtered := sales[:0]
		for _, s := range sales {
			if s.PaymentMethod == pm {
				filtered = append(filtered, s)
			}
		}
		sales = filtered
	}
	return okDegraded(c, sales, degraded)
}

func getSale(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid sale ID", nil)
	}
	sale, err := GetApp(c).Sales().Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Sale not found", nil)
	}
	return ok(c, sale)
}

// saleInvoice renders a printable plain-text invoice for the receipt printer.
func saleInvoice(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid sale ID", nil)
	}
	appctx := GetApp(c)
	sale, err := appctx.Sales().Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Sale not found", nil)
	}

	company := appctx.GetSettingsStringValue("company", "name")
	address := appctx.GetSettingsStringValue("company", "address")
	phone := appctx.GetSettingsStringValue("company", "phone")
	currency := appctx.GetSettingsStringValue("company", "currency")

	pr := message.NewPrinter(language.French)
	var b strings.Builder
	fmt.Fprintln(&b, company)
	if address != "" {
		fmt.Fprintln(&b, address)
	}
	if phone != "" {
		fmt.Fprintln(&b, "Tel:", phone)
	}
	fmt.Fprintln(&b, strings.Repeat("-", 40))
	fmt.Fprintf(&b, "Facture %s\n", sale.SaleNumber)
	fmt.Fprintf(&b, "Date: %s\n", sale.CreatedAt.Format("02/01/2006 15:04"))
	if sale.CustomerName != "" {
		fmt.Fprintf(&b, "Client: %s\n", sale.CustomerName)
	}
	fmt.Fprintln(&b, strings.Repeat("-", 40))
	for _, item := range sale.Items {
		pr.Fprintf(&b, "%-24s %3d x %10.0f\n", item.ProductName, item.Quantity, item.UnitPrice)
		pr.Fprintf(&b, "%40.0f\n", item.Total)
	}
	fmt.Fprintln(&b, strings.Repeat("-", 40))
	pr.Fprintf(&b, "Sous-total: %.0f %s\n", sale.Subtotal, currency)
	if sale.Discount > 0 {
		pr.Fprintf(&b, "Remise: %.0f%% (-%.0f %s)\n", sale.Discount, sale.Subtotal-sale.Total, currency)
	}
	pr.Fprintf(&b, "Total: %.0f %s\n", sale.Total, currency)
	fmt.Fprintf(&b, "Paiement: %s\n", paymentLabel(sale.PaymentMethod))
	fmt.Fprintln(&b, "Merci de votre visite!")

	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(b.String()))
}

func paymentLabel(method string) string {
	switch method {
	case domain.PaymentCash:
		return "Especes"
	case domain.PaymentBank:
		return "Virement bancaire"
	case domain.PaymentMobile:
		return "Mobile money"
	default:
		return method
	}
}
