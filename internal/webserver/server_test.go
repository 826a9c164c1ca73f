package webserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/comptoirlabs/comptoir/config"
)

type testAppCtx struct {
	name string
}

func TestServerRoutingAndContextInjection(t *testing.T) {
	appctx := &testAppCtx{name: "comptoir"}
	Init(appctx, config.DefaultAppConfig)

	ApiGET("/ping", func(c echo.Context) error {
		got, ok := c.Get(ContextAppKey).(*testAppCtx)
		if !ok {
			return c.String(http.StatusInternalServerError, "missing app context")
		}
		return c.String(http.StatusOK, got.name)
	})

	rec := httptest.NewRecorder()
	Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "comptoir" {
		t.Errorf("handler must see the injected app context, got %q", rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	Init(&testAppCtx{}, config.DefaultAppConfig)

	rec := httptest.NewRecorder()
	Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected health body %q", rec.Body.String())
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	Init(&testAppCtx{}, config.DefaultAppConfig)

	rec := httptest.NewRecorder()
	Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
