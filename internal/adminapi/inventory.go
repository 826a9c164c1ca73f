package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/comptoirlabs/comptoir/internal/webserver"
)

func registerInventoryRoutes() {
	webserver.ApiGET("/crm/inventory/movements", listMovements)
	webserver.ApiGET("/crm/inventory/low-stock", listLowStock)
	webserver.ApiGET("/crm/inventory/report.xlsx", inventoryReport)
}

func listMovements(c echo.Context) error {
	productID := cast.ToInt64(c.QueryParam("product_id"))
	limit := cast.ToInt(c.QueryParam("limit"))
	movements, err := GetApp(c).Sales().Movements(c.Request().Context(), productID, limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query movements", err.Error())
	}
	return ok(c, movements)
}

func listLowStock(c echo.Context) error {
	products, err := GetApp(c).Products().LowStock(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query low stock", err.Error())
	}
	return ok(c, products)
}

// inventoryReport exports the current stock position as an xlsx workbook.
func inventoryReport(c echo.Context) error {
	products, _, err := GetApp(c).Products().List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	xlsx := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"ID", "Nom", "Categorie", "Prix", "Stock", "Stock min", "Stock max", "Fournisseur", "Alerte"}
	for i, h := range headers {
		xlsx.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	for i, p := range products {
		row := i + 2
		alert := ""
		if p.Stock <= p.MinStock {
			alert = "STOCK BAS"
		}
		xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.ID)
		xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.Name)
		xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", row), p.Category)
		xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", row), p.Price)
		xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", row), p.Stock)
		xlsx.SetCellValue(sheet, fmt.Sprintf("F%d", row), p.MinStock)
		xlsx.SetCellValue(sheet, fmt.Sprintf("G%d", row), p.MaxStock)
		xlsx.SetCellValue(sheet, fmt.Sprintf("H%d", row), p.Supplier)
		xlsx.SetCellValue(sheet, fmt.Sprintf("I%d", row), alert)
	}

	filename := fmt.Sprintf("inventaire-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	_, err = xlsx.WriteTo(c.Response())
	return err
}
