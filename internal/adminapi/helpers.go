package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/comptoirlabs/comptoir/internal/app"
	"github.com/comptoirlabs/comptoir/internal/webserver"
)

// Register wires every admin api route. webserver.Init must run first.
func Register() {
	registerProductRoutes()
	registerServiceRoutes()
	registerPosRoutes()
	registerSaleRoutes()
	registerInventoryRoutes()
	registerExpenseRoutes()
	registerQuoteRoutes()
	registerFormationRoutes()
	registerStatisticsRoutes()
	registerSystemRoutes()
}

// GetApp returns the application container injected by the webserver.
func GetApp(c echo.Context) app.AppContext {
	return c.Get(webserver.ContextAppKey).(app.AppContext)
}

func GetDB(c echo.Context) *gorm.DB {
	return GetApp(c).DB()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, echo.Map{"data": data})
}

// okDegraded marks a response served from the local mirror because the
// remote store was unreachable.
func okDegraded(c echo.Context, data interface{}, degraded bool) error {
	return c.JSON(http.StatusOK, echo.Map{"data": data, "degraded": degraded})
}

// okLocal marks a mutation that was only accepted into the local mirror.
func okLocal(c echo.Context, data interface{}, local bool) error {
	return c.JSON(http.StatusOK, echo.Map{"data": data, "local_only": local})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, echo.Map{
		"error": echo.Map{"code": code, "message": message, "detail": detail},
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, echo.Map{
		"data":      rows,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
