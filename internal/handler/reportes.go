package handler

import (
	"fmt"
	"net/http"

	"granimar/internal/apierror"
	"granimar/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventarioExcel godoc
// @Summary      Descargar inventario en Excel
// @Description  Libro con el stock de láminas por material y los sobros disponibles.
// @Tags         reportes
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200 {file} binary
// @Router       /v1/reportes/inventario [get]
func (h *ReportesHandler) InventarioExcel(c *gin.Context) {
	buf, nombre, err := h.svc.InventarioExcel(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el reporte"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nombre))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
