package adminapi

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"

	"github.com/comptoirlabs/comptoir/internal/webserver"
	"github.com/comptoirlabs/comptoir/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func registerSystemRoutes() {
	webserver.ApiGET("/system/settings", listSettings)
	webserver.ApiPUT("/system/settings", saveSettings)
	webserver.ApiGET("/system/backup", downloadBackup)
	webserver.ApiGET("/system/activities", listActivities)
	webserver.ApiGET("/system/activities/export", exportActivities)
	webserver.ApiGET("/system/unsynced", listUnsynced)
	webserver.ApiGET("/system/metrics/:name", queryMetrics)
}

func listSettings(c echo.Context) error {
	configs, err := GetApp(c).SysSettings().All(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query settings", err.Error())
	}
	return ok(c, configs)
}

func saveSettings(c echo.Context) error {
	var values map[string]interface{}
	if err := c.Bind(&values); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse settings", err.Error())
	}
	if err := GetApp(c).SaveSettings(values); err != nil {
		return fail(c, http.StatusUnprocessableEntity, "SAVE_FAILED", "Failed to save settings", err.Error())
	}
	return ok(c, values)
}

// downloadBackup streams a JSON snapshot of every collection. Collections are
// fetched concurrently; a failure of any one aborts the backup.
func downloadBackup(c echo.Context) error {
	ctx := c.Request().Context()
	appctx := GetApp(c)

	var mu sync.Mutex
	dump := map[string]interface{}{
		"exported_at": time.Now(),
		"version":     1,
	}
	put := func(name string, v interface{}) {
		mu.Lock()
		dump[name] = v
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, _, err := appctx.Products().List(gctx)
		put("products", rows)
		return err
	})
	g.Go(func() error {
		rows, _, err := appctx.Services().List(gctx)
		put("services", rows)
		return err
	})
	g.Go(func() error {
		rows, _, err := appctx.Sales().List(gctx, time.Time{}, time.Time{})
		put("sales", rows)
		return err
	})
	g.Go(func() error {
		rows, _, err := appctx.Expenses().List(gctx, time.Time{}, time.Time{})
		put("expenses", rows)
		return err
	})
	g.Go(func() error {
		rows, _, err := appctx.Quotes().List(gctx)
		put("quotes", rows)
		return err
	})
	g.Go(func() error {
		rows, _, err := appctx.Formations().ListFormations(gctx)
		put("formations", rows)
		return err
	})
	g.Go(func() error {
		rows, _, err := appctx.Formations().ListStudents(gctx)
		put("students", rows)
		return err
	})
	g.Go(func() error {
		rows, _, err := appctx.Formations().ListEnrollments(gctx)
		put("student_enrollments", rows)
		return err
	})
	if err := g.Wait(); err != nil {
		return fail(c, http.StatusInternalServerError, "BACKUP_FAILED", "Failed to collect backup data", err.Error())
	}

	data, err := json.Marshal(dump)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "BACKUP_FAILED", "Failed to encode backup", err.Error())
	}
	filename := fmt.Sprintf("comptoir-backup-%s.json", time.Now().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

func listActivities(c echo.Context) error {
	limit := cast.ToInt(c.QueryParam("limit"))
	acts, err := GetApp(c).Fallback().Activities(limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to read activity log", err.Error())
	}
	return ok(c, acts)
}

func exportActivities(c echo.Context) error {
	data, err := GetApp(c).Fallback().ExportActivities()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to export activity log", err.Error())
	}
	filename := fmt.Sprintf("activites-%s.json", time.Now().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// listUnsynced surfaces pending local-only writes so the operator can see
// what has not reached the remote store yet.
func listUnsynced(c echo.Context) error {
	pending, err := GetApp(c).Fallback().Unsynced()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to read unsynced markers", err.Error())
	}
	return ok(c, pending)
}

func queryMetrics(c echo.Context) error {
	name := c.Param("name")
	end := cast.ToInt64(c.QueryParam("end"))
	if end == 0 {
		end = time.Now().Unix()
	}
	start := cast.ToInt64(c.QueryParam("start"))
	if start == 0 {
		start = end - 3600
	}
	points, err := metrics.Range(name, start, end)
	if err != nil {
		return fail(c, http.StatusNotFound, "NO_DATA", "No datapoints for metric", err.Error())
	}
	return ok(c, points)
}
