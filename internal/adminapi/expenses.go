package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/internal/webserver"
)

func registerExpenseRoutes() {
	webserver.ApiGET("/crm/expenses", listExpenses)
	webserver.ApiPOST("/crm/expenses", createExpense)
	webserver.ApiPUT("/crm/expenses/:id", updateExpense)
	webserver.ApiDELETE("/crm/expenses/:id", deleteExpense)
	webserver.ApiGET("/crm/expenses/export.csv", exportExpenses)
}

func listExpenses(c echo.Context) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DATE", err.Error(), nil)
	}
	expenses, degraded, err := GetApp(c).Expenses().List(c.Request().Context(), from, to)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query expenses", err.Error())
	}
	if category := c.QueryParam("category"); category != "" {
		filtered := expenses[:0]
		for _, e := range expenses {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		expenses = filtered
	}
	return okDegraded(c, expenses, degraded)
}

func validateExpense(e *domain.Expense) (string, bool) {
	e.Description = strings.TrimSpace(e.Description)
	if e.Description == "" {
		return "Description is required", false
	}
	if e.Amount <= 0 {
		return "Amount must be > 0", false
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	return "", true
}

func createExpense(c echo.Context) error {
	var e domain.Expense
	if err := c.Bind(&e); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse expense", err.Error())
	}
	if msg, valid := validateExpense(&e); !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}
	e.ID = 0
	local, err := GetApp(c).Expenses().Create(c.Request().Context(), &e)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to create expense", err.Error())
	}
	return okLocal(c, e, local)
}

func updateExpense(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid expense ID", nil)
	}
	var e domain.Expense
	if err := c.Bind(&e); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse expense", err.Error())
	}
	if msg, valid := validateExpense(&e); !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}
	e.ID = id
	local, err := GetApp(c).Expenses().Update(c.Request().Context(), &e)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to update expense", err.Error())
	}
	return okLocal(c, e, local)
}

func deleteExpense(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid expense ID", nil)
	}
	local, err := GetApp(c).Expenses().Delete(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to delete expense", err.Error())
	}
	return okLocal(c, echo.Map{"id": id}, local)
}

type expenseCsvRow struct {
	Date          string  `csv:"date"`
	Description   string  `csv:"description"`
	Category      string  `csv:"category"`
	Amount        float64 `csv:"amount"`
	PaymentMethod string  `csv:"payment_method"`
	ReceiptNumber string  `csv:"receipt_number"`
}

func exportExpenses(c echo.Context) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DATE", err.Error(), nil)
	}
	expenses, _, err := GetApp(c).Expenses().List(c.Request().Context(), from, to)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query expenses", err.Error())
	}
	rows := make([]expenseCsvRow, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, expenseCsvRow{
			Date:          e.Date.Format("2006-01-02"),
			Description:   e.Description,
			Category:      e.Category,
			Amount:        e.Amount,
			PaymentMethod: e.PaymentMethod,
			ReceiptNumber: e.ReceiptNumber,
		})
	}
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to encode csv", err.Error())
	}
	filename := fmt.Sprintf("depenses-%s.csv", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Blob(http.StatusOK, "text/csv", data)
}
