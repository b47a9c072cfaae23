package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type FacturaItemRequest struct {
	Descripcion string          `json:"descripcion" validate:"required,min=2"`
	Monto       decimal.Decimal `json:"monto"       validate:"required"`
}

type CrearFacturaRequest struct {
	Cliente  string               `json:"cliente"  validate:"required,min=2"`
	Proyecto string               `json:"proyecto" validate:"required,min=2"`
	Email    *string              `json:"email"    validate:"omitempty,email"`
	Items    []FacturaItemRequest `json:"items"    validate:"required,min=1,dive"`
}

type RegistrarPagoRequest struct {
	Metodo string          `json:"metodo" validate:"required,oneof=efectivo transferencia sinpe"`
	Monto  decimal.Decimal `json:"monto"  validate:"required"`
	Fecha  string          `json:"fecha"` // YYYY-MM-DD, default hoy
}

type FacturaFilter struct {
	Cliente string `form:"cliente"`
	Estado  string `form:"estado"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FacturaItemResponse struct {
	Descripcion string          `json:"descripcion"`
	Monto       decimal.Decimal `json:"monto"`
}

type FacturaPagoResponse struct {
	Metodo string          `json:"metodo"`
	Monto  decimal.Decimal `json:"monto"`
	Fecha  string          `json:"fecha"`
}

type FacturaResponse struct {
	ID              string                `json:"id"`
	Numero          int                   `json:"numero"`
	Cliente         string                `json:"cliente"`
	Proyecto        string                `json:"proyecto"`
	Items           []FacturaItemResponse `json:"items"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	Total           decimal.Decimal       `json:"total"`
	TotalUSD        decimal.Decimal       `json:"total_usd"`
	TipoCambio      decimal.Decimal       `json:"tipo_cambio"`
	Pagado          decimal.Decimal       `json:"pagado"`
	Estado          string                `json:"estado"`
	EstadoDocumento string                `json:"estado_documento"`
	Pagos           []FacturaPagoResponse `json:"pagos,omitempty"`
	Fecha           string                `json:"fecha"`
}

type FacturaListResponse struct {
	Data  []FacturaResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
