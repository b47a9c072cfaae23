package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearGastoRequest struct {
	Categoria   string          `json:"categoria"   validate:"required,min=2"`
	Descripcion string          `json:"descripcion" validate:"required,min=2"`
	Monto       decimal.Decimal `json:"monto"       validate:"required"`
	Fijo        bool            `json:"fijo"`
	Fecha       string          `json:"fecha"` // YYYY-MM-DD, default hoy
}

type ActualizarGastoRequest struct {
	Categoria   *string          `json:"categoria" validate:"omitempty,min=2"`
	Descripcion *string          `json:"descripcion"`
	Monto       *decimal.Decimal `json:"monto"`
	Fijo        *bool            `json:"fijo"`
}

type GastoFilter struct {
	Categoria string `form:"categoria"`
	Mes       string `form:"mes"` // YYYY-MM
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type GastoResponse struct {
	ID          string          `json:"id"`
	Categoria   string          `json:"categoria"`
	Descripcion string          `json:"descripcion"`
	Monto       decimal.Decimal `json:"monto"`
	Fijo        bool            `json:"fijo"`
	Fecha       string          `json:"fecha"`
}

type GastoListResponse struct {
	Data  []GastoResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ResumenGastosResponse es el cierre mensual: totales por tipo y el costo
// fijo prorrateado por lámina consumida en el mes.
type ResumenGastosResponse struct {
	Mes                string                     `json:"mes"`
	TotalFijos         decimal.Decimal            `json:"total_fijos"`
	TotalVariables     decimal.Decimal            `json:"total_variables"`
	Total              decimal.Decimal            `json:"total"`
	LaminasConsumidas  int                        `json:"laminas_consumidas"`
	CostoFijoPorLamina decimal.Decimal            `json:"costo_fijo_por_lamina"`
	PorCategoria       map[string]decimal.Decimal `json:"por_categoria"`
}
