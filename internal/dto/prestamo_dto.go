package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearPrestamoRequest struct {
	Entidad      string          `json:"entidad"        validate:"required,min=2"`
	Descripcion  *string         `json:"descripcion"`
	Principal    decimal.Decimal `json:"principal"      validate:"required"`
	TasaAnualPct decimal.Decimal `json:"tasa_anual_pct"` // 0 = sin intereses
	PlazoMeses   int             `json:"plazo_meses"    validate:"required,min=1"`
	FechaInicio  string          `json:"fecha_inicio"` // YYYY-MM-DD, default hoy
}

type RegistrarAbonoRequest struct {
	Monto decimal.Decimal `json:"monto" validate:"required"`
	Fecha string          `json:"fecha"` // YYYY-MM-DD, default hoy
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PrestamoResponse struct {
	ID           string          `json:"id"`
	Entidad      string          `json:"entidad"`
	Descripcion  *string         `json:"descripcion,omitempty"`
	Principal    decimal.Decimal `json:"principal"`
	TasaAnualPct decimal.Decimal `json:"tasa_anual_pct"`
	PlazoMeses   int             `json:"plazo_meses"`
	CuotaMensual decimal.Decimal `json:"cuota_mensual"`
	Saldo        decimal.Decimal `json:"saldo"`
	Estado       string          `json:"estado"`
	FechaInicio  string          `json:"fecha_inicio"`
	Abonos       []AbonoResponse `json:"abonos,omitempty"`
}

type AbonoResponse struct {
	ID             string          `json:"id"`
	Monto          decimal.Decimal `json:"monto"`
	PorcionCapital decimal.Decimal `json:"porcion_capital"`
	PorcionInteres decimal.Decimal `json:"porcion_interes"`
	SaldoDespues   decimal.Decimal `json:"saldo_despues"`
	Fecha          string          `json:"fecha"`
}
