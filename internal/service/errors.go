package service

import (
	"errors"
	"fmt"
)

// Errores de dominio. Las validaciones corren completas antes de tocar la
// base: si alguna falla, ninguna mutación ocurre.
var (
	ErrCantidadInvalida   = errors.New("la cantidad solicitada debe ser mayor a cero")
	ErrAbonoDescuadrado   = errors.New("el abono no cuadra: capital + interes debe ser igual al monto")
	ErrMaterialInactivo   = errors.New("el material está inactivo")
	ErrRetiroNoEncontrado = errors.New("retiro no encontrado")
	ErrFacturaAnulada     = errors.New("la factura está anulada")
	ErrPagoExcedeSaldo    = errors.New("el pago excede el saldo pendiente de la factura")
)

// StockInsuficienteError reporta el faltante exacto de láminas.
type StockInsuficienteError struct {
	Requeridas  int
	Disponibles int
}

func (e *StockInsuficienteError) Error() string {
	return fmt.Sprintf("stock insuficiente: se requieren %d láminas y hay %d disponibles",
		e.Requeridas, e.Disponibles)
}

// CampoRequeridoError señala un campo obligatorio vacío (proyecto, usuario).
type CampoRequeridoError struct {
	Campo string
}

func (e *CampoRequeridoError) Error() string {
	return fmt.Sprintf("el campo %q es obligatorio", e.Campo)
}
