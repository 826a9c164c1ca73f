package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/internal/webserver"
)

func registerFormationRoutes() {
	webserver.ApiGET("/crm/formations", listFormations)
	webserver.ApiPOST("/crm/formations", createFormation)
	webserver.ApiPUT("/crm/formations/:id", updateFormation)
	webserver.ApiDELETE("/crm/formations/:id", deleteFormation)
	webserver.ApiGET("/crm/students", listStudents)
	webserver.ApiPOST("/crm/students", createStudent)
	webserver.ApiGET("/crm/enrollments", listEnrollments)
	webserver.ApiPOST("/crm/enrollments", enrollStudent)
	webserver.ApiPOST("/crm/enrollments/:id/payment", recordEnrollmentPayment)
}

func listFormations(c echo.Context) error {
	formations, degraded, err := GetApp(c).Formations().ListFormations(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query formations", err.Error())
	}
	return okDegraded(c, formations, degraded)
}

func validateFormation(f *domain.Formation) (string, bool) {
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		return "Title is required", false
	}
	if f.Price < 0 {
		return "Price must be >= 0", false
	}
	if f.MaxParticipants <= 0 {
		return "Max participants must be > 0", false
	}
	return "", true
}

func createFormation(c echo.Context) error {
	var f domain.Formation
	if err := c.Bind(&f); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse formation", err.Error())
	}
	if msg, valid := validateFormation(&f); !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}
	f.ID = 0
	f.CurrentParticipants = 0
	local, err := GetApp(c).Formations().CreateFormation(c.Request().Context(), &f)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to create formation", err.Error())
	}
	return okLocal(c, f, local)
}

func updateFormation(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid formation ID", nil)
	}
	var f domain.Formation
	if err := c.Bind(&f); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse formation", err.Error())
	}
	if msg, valid := validateFormation(&f); !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}
	f.ID = id
	if err := GetApp(c).Formations().UpdateFormation(c.Request().Context(), &f); err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to update formation", err.Error())
	}
	return ok(c, f)
}

func deleteFormation(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid formation ID", nil)
	}
	if err := GetApp(c).Formations().DeleteFormation(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to delete formation", err.Error())
	}
	return ok(c, echo.Map{"id": id})
}

func listStudents(c echo.Context) error {
	students, degraded, err := GetApp(c).Formations().ListStudents(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query students", err.Error())
	}
	return okDegraded(c, students, degraded)
}

func createStudent(c echo.Context) error {
	var st domain.Student
	if err := c.Bind(&st); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse student", err.Error())
	}
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	st.ID = 0
	if err := GetApp(c).Formations().CreateStudent(c.Request().Context(), &st); err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to create student", err.Error())
	}
	return ok(c, st)
}

func listEnrollments(c echo.Context) error {
	enrollments, degraded, err := GetApp(c).Formations().ListEnrollments(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query enrollments", err.Error())
	}
	return okDegraded(c, enrollments, degraded)
}

func enrollStudent(c echo.Context) error {
	var e domain.StudentEnrollment
	if err := c.Bind(&e); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse enrollment", err.Error())
	}
	if e.StudentID == 0 || e.FormationID == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "student_id and formation_id are required", nil)
	}
	e.ID = 0
	err := GetApp(c).Formations().Enroll(c.Request().Context(), &e)
	if errors.Is(err, domain.ErrFormationFull) {
		return fail(c, http.StatusConflict, "FORMATION_FULL", "No remaining seats", nil)
	}
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", "Failed to enroll student", err.Error())
	}
	return ok(c, e)
}

func recordEnrollmentPayment(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid enrollment ID", nil)
	}
	var payload struct {
		Amount float64 `json:"amount"`
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse payment", err.Error())
	}
	if payload.Amount <= 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Amount must be > 0", nil)
	}
	e, err := GetApp(c).Formations().RecordPayment(c.Request().Context(), id, payload.Amount)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "PAYMENT_FAILED", "Failed to record payment", err.Error())
	}
	return ok(c, e)
}
