package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearMaterialRequest struct {
	Nombre                 string          `json:"nombre"                    validate:"required,min=2,max=120"`
	Color                  *string         `json:"color"`
	LaminasStock           int             `json:"laminas_stock"             validate:"min=0"`
	StockMinimo            int             `json:"stock_minimo"              validate:"min=0"`
	CostoPorLamina         decimal.Decimal `json:"costo_por_lamina"          validate:"required"`
	PrecioVentaPorLamina   decimal.Decimal `json:"precio_venta_por_lamina"   validate:"required"`
	PrecioPorMetroLineal   decimal.Decimal `json:"precio_por_metro_lineal"   validate:"required"`
	PrecioPorMetroCuadrado decimal.Decimal `json:"precio_por_metro_cuadrado" validate:"required"`
}

type ActualizarMaterialRequest struct {
	Nombre                 *string          `json:"nombre" validate:"omitempty,min=2,max=120"`
	Color                  *string          `json:"color"`
	StockMinimo            *int             `json:"stock_minimo" validate:"omitempty,min=0"`
	CostoPorLamina         *decimal.Decimal `json:"costo_por_lamina"`
	PrecioVentaPorLamina   *decimal.Decimal `json:"precio_venta_por_lamina"`
	PrecioPorMetroLineal   *decimal.Decimal `json:"precio_por_metro_lineal"`
	PrecioPorMetroCuadrado *decimal.Decimal `json:"precio_por_metro_cuadrado"`
}

// AjusteStockRequest registra una entrada o salida manual de láminas.
type AjusteStockRequest struct {
	Laminas int    `json:"laminas" validate:"required"` // positivo = entrada, negativo = salida
	Motivo  string `json:"motivo"  validate:"required,min=3"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type MaterialFilter struct {
	Nombre string `form:"nombre"`
	Activo string `form:"activo"` // "false" | "all" | default activos
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MaterialResponse struct {
	ID                     string          `json:"id"`
	Nombre                 string          `json:"nombre"`
	Color                  *string         `json:"color"`
	LaminasStock           int             `json:"laminas_stock"`
	StockMinimo            int             `json:"stock_minimo"`
	CostoPorLamina         decimal.Decimal `json:"costo_por_lamina"`
	PrecioVentaPorLamina   decimal.Decimal `json:"precio_venta_por_lamina"`
	PrecioPorMetroLineal   decimal.Decimal `json:"precio_por_metro_lineal"`
	PrecioPorMetroCuadrado decimal.Decimal `json:"precio_por_metro_cuadrado"`
	Activo                 bool            `json:"activo"`
}

type MaterialListResponse struct {
	Data  []MaterialResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// MovimientoResponse es una línea de la bitácora de stock.
type MovimientoResponse struct {
	ID            string  `json:"id"`
	MaterialID    string  `json:"material_id"`
	Material      string  `json:"material,omitempty"`
	Tipo          string  `json:"tipo"`
	Laminas       int     `json:"laminas"`
	StockAnterior int     `json:"stock_anterior"`
	StockNuevo    int     `json:"stock_nuevo"`
	Motivo        string  `json:"motivo,omitempty"`
	ReferenciaID  *string `json:"referencia_id,omitempty"`
	Fecha         string  `json:"fecha"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// AlertaStockResponse marca materiales por debajo de su stock mínimo.
type AlertaStockResponse struct {
	MaterialID   string `json:"material_id"`
	Nombre       string `json:"nombre"`
	LaminasStock int    `json:"laminas_stock"`
	StockMinimo  int    `json:"stock_minimo"`
}
