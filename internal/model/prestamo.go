package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prestamo es un crédito del taller con una entidad financiera.
// La cuota mensual se calcula al crearlo con la fórmula estándar de
// amortización y queda fija; el saldo baja con cada abono.
type Prestamo struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Entidad      string          `gorm:"not null"`
	Descripcion  *string
	Principal    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TasaAnualPct decimal.Decimal `gorm:"type:decimal(6,2);not null"` // 0 = sin intereses
	PlazoMeses   int             `gorm:"not null"`
	CuotaMensual decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Saldo        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Estado       string          `gorm:"not null;default:'activo'"` // "activo" | "cancelado"
	FechaInicio  time.Time       `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Abonos []AbonoPrestamo `gorm:"foreignKey:PrestamoID"`
}

func (Prestamo) TableName() string { return "prestamos" }

// AbonoPrestamo es un pago sobre un préstamo, dividido en capital e interés.
// Invariante: PorcionCapital + PorcionInteres == Monto a dos decimales.
type AbonoPrestamo struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PrestamoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Monto          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PorcionCapital decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PorcionInteres decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SaldoDespues   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Fecha          time.Time       `gorm:"not null"`
	CreatedAt      time.Time
}

func (AbonoPrestamo) TableName() string { return "abonos_prestamos" }
