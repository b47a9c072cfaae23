package handler

import (
	"errors"
	"net/http"
	"strconv"

	"granimar/internal/apierror"
	"granimar/internal/dto"
	"granimar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaterialesHandler struct{ svc service.MaterialService }

func NewMaterialesHandler(svc service.MaterialService) *MaterialesHandler {
	return &MaterialesHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear material
// @Tags         materiales
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearMaterialRequest true "Material nuevo"
// @Success      201  {object} dto.MaterialResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/materiales [post]
func (h *MaterialesHandler) Crear(c *gin.Context) {
	var req dto.CrearMaterialRequest
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

// Listar godoc
// @Summary      Listar materiales
// @Tags         materiales
// @Produce      json
// @Param        nombre query string false "Nombre (búsqueda parcial)"
// @Param        activo query string false "false | all (default: activos)"
// @Success      200 {object} dto.MaterialListResponse
// @Router       /v1/materiales [get]
func (h *MaterialesHandler) Listar(c *gin.Context) {
	var filter dto.MaterialFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar materiales"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaterialesHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Material no encontrado"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaterialesHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarMaterialRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Material no encontrado"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaterialesHandler) Desactivar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Material no encontrado"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MaterialesHandler) Reactivar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Reactivar(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Material no encontrado"))
		return
	}
	c.Status(http.StatusNoContent)
}

// AjustarStock godoc
// @Summary      Ajuste manual de stock
// @Description  Entrada o salida manual de láminas (compras, roturas). Queda en el historial de movimientos.
// @Tags         materiales
// @Accept       json
// @Produce      json
// @Param        id   path string                 true "UUID del material"
// @Param        body body dto.AjusteStockRequest true "Láminas (±) y motivo"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/materiales/{id}/ajuste-stock [post]
func (h *MaterialesHandler) AjustarStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AjusteStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AjustarStock(c.Request.Context(), id, req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarMovimientos serves the stock movement ledger, optionally filtered
// by material and movement type.
func (h *MaterialesHandler) ListarMovimientos(c *gin.Context) {
	var materialID *uuid.UUID
	if raw := c.Query("material_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("material_id invalido"))
			return
		}
		materialID = &id
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	resp, err := h.svc.ListarMovimientos(c.Request.Context(), materialID, c.Query("tipo"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar movimientos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerAlertas lists materials at or below their minimum stock.
func (h *MaterialesHandler) ObtenerAlertas(c *gin.Context) {
	resp, err := h.svc.ObtenerAlertas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al obtener alertas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
