package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Material representa un tipo de lámina de granito/mármol en bodega.
// El stock se cuenta en láminas enteras; los sobrantes de corte se rastrean
// aparte como Sobro (área reutilizable en m²).
type Material struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre string    `gorm:"index;not null"`
	Color  *string
	// LaminasStock es el inventario de láminas enteras. Nunca queda negativo
	// después de una operación confirmada.
	LaminasStock int `gorm:"not null;default:0"`
	StockMinimo  int `gorm:"not null;default:2"`

	// Precios de referencia — configuración, no se calculan aquí.
	CostoPorLamina         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioVentaPorLamina   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioPorMetroLineal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioPorMetroCuadrado decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Material) TableName() string { return "materiales" }
