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

type PrestamosHandler struct{ svc service.PrestamoService }

func NewPrestamosHandler(svc service.PrestamoService) *PrestamosHandler {
	return &PrestamosHandler{svc: svc}
}

// Crear godoc
// @Summary      Registrar préstamo
// @Description  Crea el préstamo y calcula la cuota mensual por amortización francesa (o división exacta si la tasa es cero).
// @Tags         prestamos
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearPrestamoRequest true "Préstamo nuevo"
// @Success      201  {object} dto.PrestamoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/prestamos [post]
func (h *PrestamosHandler) Crear(c *gin.Context) {
	var req dto.CrearPrestamoRequest
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

func (h *PrestamosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), c.Query("estado"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar prestamos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PrestamosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Prestamo no encontrado"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarAbono godoc
// @Summary      Registrar abono
// @Description  Divide el abono en interés (sobre el saldo) y capital, y descuenta el saldo. Rechaza abonos descuadrados.
// @Tags         prestamos
// @Accept       json
// @Produce      json
// @Param        id   path string                   true "UUID del préstamo"
// @Param        body body dto.RegistrarAbonoRequest true "Monto y fecha"
// @Success      201  {object} dto.AbonoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/prestamos/{id}/abonos [post]
func (h *PrestamosHandler) RegistrarAbono(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.RegistrarAbonoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarAbono(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Prestamo no encontrado"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// EliminarAbono reverses a mistaken payment: restores the loan balance.
func (h *PrestamosHandler) EliminarAbono(c *gin.Context) {
	prestamoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	abonoID, err := uuid.Parse(c.Param("abono_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.EliminarAbono(c.Request.Context(), prestamoID, abonoID); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
