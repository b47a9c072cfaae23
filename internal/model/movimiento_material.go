package model

import (
	"time"

	"github.com/google/uuid"
)

// MovimientoMaterial registra cada cambio de stock de láminas de un material.
// Se crea automáticamente al confirmar o anular un retiro y en los ajustes
// manuales de bodega (entradas y salidas).
type MovimientoMaterial struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MaterialID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo          string    `gorm:"not null"` // "retiro" | "anulacion_retiro" | "entrada" | "salida"
	Laminas       int       `gorm:"not null"` // positivo = entrada, negativo = salida
	StockAnterior int       `gorm:"not null"`
	StockNuevo    int       `gorm:"not null"`
	Motivo        string
	ReferenciaID  *uuid.UUID `gorm:"type:uuid"` // retiro_id si aplica
	CreatedAt     time.Time

	Material *Material `gorm:"foreignKey:MaterialID"`
}

func (MovimientoMaterial) TableName() string { return "movimientos_material" }
