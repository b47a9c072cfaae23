package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gasto es un egreso del taller. Los gastos fijos (alquiler, electricidad,
// planilla) se prorratean entre las láminas consumidas del mes para estimar
// el costo indirecto por lámina.
type Gasto struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Categoria   string          `gorm:"index;not null"`
	Descripcion string          `gorm:"not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Fijo        bool            `gorm:"not null;default:false"`
	Fecha       time.Time       `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Gasto) TableName() string { return "gastos" }
