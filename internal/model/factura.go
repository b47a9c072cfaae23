package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Factura agrupa los cobros de un proyecto: líneas de detalle, total en
// colones y su equivalente en dólares al tipo de cambio del día de emisión.
type Factura struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero   int       `gorm:"uniqueIndex;not null"`
	Cliente  string    `gorm:"not null"`
	Proyecto string    `gorm:"not null"`
	Email    *string

	Subtotal decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	// TotalUSD se congela al emitir con el tipo de cambio vigente; si el
	// servicio de cambio no responde queda en cero y se completa en el retry.
	TotalUSD   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TipoCambio decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0"`

	Estado string `gorm:"not null;default:'pendiente'"` // "pendiente" | "pagada" | "anulada"

	// Seguimiento del documento PDF generado por el worker.
	EstadoDocumento string     `gorm:"not null;default:'pendiente'"` // "pendiente" | "generado" | "error"
	PDFPath         *string
	RetryCount      int        `gorm:"not null;default:0"`
	NextRetryAt     *time.Time `gorm:"index"`
	LastError       *string

	Fecha     time.Time `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []FacturaItem `gorm:"foreignKey:FacturaID"`
	Pagos []FacturaPago `gorm:"foreignKey:FacturaID"`
}

func (Factura) TableName() string { return "facturas" }

type FacturaItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FacturaID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Descripcion string          `gorm:"not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

func (FacturaItem) TableName() string { return "factura_items" }

type FacturaPago struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FacturaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Metodo    string          `gorm:"not null"` // "efectivo" | "transferencia" | "sinpe"
	Monto     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Fecha     time.Time       `gorm:"not null"`
	CreatedAt time.Time
}

func (FacturaPago) TableName() string { return "factura_pagos" }
