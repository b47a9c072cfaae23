package handler

import (
	"errors"
	"net/http"

	"granimar/internal/apierror"
	"granimar/internal/dto"
	"granimar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RetirosHandler struct{ svc service.RetiroService }

func NewRetirosHandler(svc service.RetiroService) *RetirosHandler { return &RetirosHandler{svc: svc} }

// CalcularRetiro godoc
// @Summary      Calcular un retiro sin confirmarlo
// @Description  Vista previa pura: láminas necesarias, costo, precio y sobro proyectado. No toca stock.
// @Tags         retiros
// @Accept       json
// @Produce      json
// @Param        body body dto.CalcularRetiroRequest true "Detalle del retiro"
// @Success      200  {object} dto.CalculoRetiroResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/retiros/calcular [post]
func (h *RetirosHandler) CalcularRetiro(c *gin.Context) {
	var req dto.CalcularRetiroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Calcular(c.Request.Context(), req)
	if err != nil {
		writeRetiroError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarRetiro godoc
// @Summary      Registrar un retiro de material
// @Description  Confirma el retiro en una transacción ACID: consume sobros, descuenta láminas y registra el movimiento de stock.
// @Tags         retiros
// @Accept       json
// @Produce      json
// @Param        body body dto.RegistrarRetiroRequest true "Detalle del retiro"
// @Success      201  {object} dto.RetiroResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.StockError
// @Router       /v1/retiros [post]
func (h *RetirosHandler) RegistrarRetiro(c *gin.Context) {
	var req dto.RegistrarRetiroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		writeRetiroError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AnularRetiro godoc
// @Summary      Anular retiro
// @Description  Revierte el retiro: repone láminas, elimina el sobro generado y devuelve el área consumida a la bolsa general.
// @Tags         retiros
// @Produce      json
// @Param        id path string true "UUID del retiro"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/retiros/{id} [delete]
func (h *RetirosHandler) AnularRetiro(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Anular(c.Request.Context(), id); err != nil {
		writeRetiroError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarRetiros godoc
// @Summary      Listar retiros
// @Description  Lista paginada filtrada por material, proyecto y rango de fechas.
// @Tags         retiros
// @Produce      json
// @Param        material_id query string false "UUID del material"
// @Param        proyecto    query string false "Proyecto (búsqueda parcial)"
// @Param        desde       query string false "Fecha YYYY-MM-DD"
// @Param        hasta       query string false "Fecha YYYY-MM-DD"
// @Success      200 {object} dto.RetiroListResponse
// @Router       /v1/retiros [get]
func (h *RetirosHandler) ListarRetiros(c *gin.Context) {
	var filter dto.RetiroFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar retiros"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// writeRetiroError maps domain errors to HTTP responses. Stock shortfalls get
// a 409 with the exact numbers so the operator can decide restock vs reduce.
func writeRetiroError(c *gin.Context, err error) {
	var stockErr *service.StockInsuficienteError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusConflict, apierror.NewStock(stockErr.Error(), stockErr.Requeridas, stockErr.Disponibles))
		return
	}
	var campoErr *service.CampoRequeridoError
	if errors.As(err, &campoErr) {
		c.JSON(http.StatusBadRequest, apierror.New(campoErr.Error()))
		return
	}
	switch {
	case errors.Is(err, service.ErrCantidadInvalida),
		errors.Is(err, service.ErrMaterialInactivo):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrRetiroNoEncontrado),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Retiro o material no encontrado"))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
