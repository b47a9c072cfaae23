package handler

import (
	"net/http"

	"granimar/internal/apierror"
	"granimar/internal/dto"
	"granimar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GastosHandler struct{ svc service.GastoService }

func NewGastosHandler(svc service.GastoService) *GastosHandler { return &GastosHandler{svc: svc} }

func (h *GastosHandler) Crear(c *gin.Context) {
	var req dto.CrearGastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *GastosHandler) Listar(c *gin.Context) {
	var filter dto.GastoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar gastos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GastosHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarGastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GastosHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Gasto no encontrado"))
		return
	}
	c.Status(http.StatusNoContent)
}

// ResumenMensual godoc
// @Summary      Resumen mensual de gastos
// @Description  Totales de gastos fijos y variables del mes, con el costo fijo prorrateado por lámina consumida.
// @Tags         gastos
// @Produce      json
// @Param        mes query string true "Mes YYYY-MM"
// @Success      200 {object} dto.ResumenGastosResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/gastos/resumen [get]
func (h *GastosHandler) ResumenMensual(c *gin.Context) {
	mes := c.Query("mes")
	if mes == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Parametro mes (YYYY-MM) requerido"))
		return
	}
	resp, err := h.svc.ResumenMensual(c.Request.Context(), mes)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
