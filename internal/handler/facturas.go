package handler

import (
	"errors"
	"fmt"
	"net/http"

	"granimar/internal/apierror"
	"granimar/internal/dto"
	"granimar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FacturasHandler struct{ svc service.FacturaService }

func NewFacturasHandler(svc service.FacturaService) *FacturasHandler {
	return &FacturasHandler{svc: svc}
}

// Crear godoc
// @Summary      Emitir factura
// @Description  Asigna el consecutivo, congela el total en USD al tipo de cambio del día y encola la generación del PDF.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearFacturaRequest true "Factura nueva"
// @Success      201  {object} dto.FacturaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/facturas [post]
func (h *FacturasHandler) Crear(c *gin.Context) {
	var req dto.CrearFacturaRequest
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

func (h *FacturasHandler) Listar(c *gin.Context) {
	var filter dto.FacturaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar facturas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FacturasHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Factura no encontrada"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarPago godoc
// @Summary      Registrar pago
// @Description  Agrega un pago; la factura pasa a pagada cuando los pagos cubren el total. Rechaza pagos mayores al saldo.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Param        id   path string                  true "UUID de la factura"
// @Param        body body dto.RegistrarPagoRequest true "Pago"
// @Success      200  {object} dto.FacturaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/facturas/{id}/pagos [post]
func (h *FacturasHandler) RegistrarPago(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.RegistrarPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarPago(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Factura no encontrada"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FacturasHandler) Anular(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Anular(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Factura no encontrada"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ReintentarDocumento re-encola la generación del PDF para facturas cuyo
// documento quedó en estado "error".
func (h *FacturasHandler) ReintentarDocumento(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.ReintentarDocumento(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"ok": true})
}

// DescargarPDF sirve el archivo generado por el worker.
func (h *FacturasHandler) DescargarPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Factura no encontrada"))
		return
	}
	if resp.EstadoDocumento != "generado" {
		c.JSON(http.StatusConflict, apierror.New("El PDF aun no esta generado"))
		return
	}
	pdfPath, err := h.svc.PDFPath(c.Request.Context(), id)
	if err != nil || pdfPath == "" {
		c.JSON(http.StatusNotFound, apierror.New("Archivo no disponible"))
		return
	}
	c.FileAttachment(pdfPath, fmt.Sprintf("factura_%d.pdf", resp.Numero))
}
