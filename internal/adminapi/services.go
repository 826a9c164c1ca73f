package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/internal/webserver"
)

func registerServiceRoutes() {
	webserver.ApiGET("/crm/services", listServices)
	webserver.ApiGET("/crm/services/:id", getService)
	webserver.ApiPOST("/crm/services", createService)
	webserver.ApiPUT("/crm/services/:id", updateService)
	webserver.ApiDELETE("/crm/services/:id", deleteService)
}

func listServices(c echo.Context) error {
	services, degraded, err := GetApp(c).Services().List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query services", err.Error())
	}
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		filtered := services[:0]
		for _, sv := range services {
			if strings.Contains(strings.ToLower(sv.Name), strings.ToLower(q)) {
				filtered = append(filtered, sv)
			}
		}
		services = filtered
	}
	return okDegraded(c, services, degraded)
}

func getService(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID", nil)
	}
	sv, err := GetApp(c).Services().Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Service not found", nil)
	}
	return ok(c, sv)
}

func createService(c echo.Context) error {
	var sv domain.Service
	if err := c.Bind(&sv); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse service", err.Error())
	}
	sv.Name = strings.TrimSpace(sv.Name)
	if sv.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if sv.Price < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must be >= 0", nil)
	}
	sv.ID = 0
	local, err := GetApp(c).Services().Create(c.Request().Context(), &sv)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to create service", err.Error())
	}
	return okLocal(c, sv, local)
}

func updateService(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID", nil)
	}
	sv, err := GetApp(c).Services().Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Service not found", nil)
	}
	var payload domain.Service
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse service", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if payload.Price < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must be >= 0", nil)
	}
	sv.Name = payload.Name
	sv.Category = payload.Category
	sv.Price = payload.Price
	sv.Unit = payload.Unit
	sv.Description = payload.Description
	local, err := GetApp(c).Services().Update(c.Request().Context(), sv)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to update service", err.Error())
	}
	return okLocal(c, sv, local)
}

func deleteService(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID", nil)
	}
	local, err := GetApp(c).Services().Delete(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to delete service", err.Error())
	}
	return okLocal(c, echo.Map{"id": id}, local)
}
