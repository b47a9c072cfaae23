package handler

import (
	"net/http"

	"granimar/internal/apierror"
	"granimar/internal/dto"
	"granimar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SobrosHandler struct{ svc service.SobroService }

func NewSobrosHandler(svc service.SobroService) *SobrosHandler { return &SobrosHandler{svc: svc} }

// Crear godoc
// @Summary      Registrar sobro manual
// @Description  Da de alta un retazo que no nació de un retiro (inventario previo al sistema).
// @Tags         sobros
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearSobroRequest true "Sobro nuevo"
// @Success      201  {object} dto.SobroResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sobros [post]
func (h *SobrosHandler) Crear(c *gin.Context) {
	var req dto.CrearSobroRequest
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
// @Summary      Listar sobros
// @Description  Por defecto lista los disponibles (usables y no usados) con el área total sumada.
// @Tags         sobros
// @Produce      json
// @Param        material_id query string false "UUID del material"
// @Param        estado      query string false "disponibles | usados | all"
// @Success      200 {object} dto.SobroListResponse
// @Router       /v1/sobros [get]
func (h *SobrosHandler) Listar(c *gin.Context) {
	var filter dto.SobroFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar sobros"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar permite marcar un sobro como no usable o corregir las notas.
func (h *SobrosHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarSobroRequest
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
