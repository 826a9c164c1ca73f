package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/comptoirlabs/comptoir/internal/domain"
)

func testContext(t *testing.T, target string) echo.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec)
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		target   string
		page     int
		pageSize int
	}{
		{"/api/crm/products", 1, 20},
		{"/api/crm/products?page=3&pageSize=50", 3, 50},
		{"/api/crm/products?page=0&pageSize=-5", 1, 20},
		{"/api/crm/products?page=abc", 1, 20},
	}
	for _, tc := range cases {
		page, pageSize := parsePagination(testContext(t, tc.target))
		if page != tc.page || pageSize != tc.pageSize {
			t.Errorf("%s: got %d/%d, want %d/%d", tc.target, page, pageSize, tc.page, tc.pageSize)
		}
	}
}

func TestParseDateRange(t *testing.T) {
	from, to, err := parseDateRange(testContext(t, "/api/crm/sales?from=2025-01-01&to=2025-01-31"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if from.Year() != 2025 || from.Month() != 1 || from.Day() != 1 {
		t.Errorf("from: got %v", from)
	}
	if to.Day() != 31 {
		t.Errorf("to: got %v", to)
	}

	from, to, err = parseDateRange(testContext(t, "/api/crm/sales"))
	if err != nil {
		t.Fatalf("empty range must parse: %v", err)
	}
	if !from.IsZero() || !to.IsZero() {
		t.Errorf("missing params must yield the open range, got %v %v", from, to)
	}

	if _, _, err := parseDateRange(testContext(t, "/api/crm/sales?from=notadate")); err == nil {
		t.Error("invalid date must error")
	}
}

func TestPaymentLabel(t *testing.T) {
	if got := paymentLabel(domain.PaymentCash); got != "Especes" {
		t.Errorf("cash: got %q", got)
	}
	if got := paymentLabel("cheque"); got != "cheque" {
		t.Errorf("unknown methods pass through, got %q", got)
	}
}
