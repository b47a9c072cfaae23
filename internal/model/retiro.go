package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de retiro de material.
const (
	RetiroLaminas         = "laminas"          // láminas enteras, sin corte
	RetiroMetrosLineales  = "metros_lineales"  // corte dimensionado largo × ancho
	RetiroMetrosCuadrados = "metros_cuadrados" // área directa en m²
)

// Retiro es el registro inmutable de un consumo de material para un proyecto.
// Se crea de forma atómica junto con sus efectos sobre el stock y los sobros;
// sólo se elimina mediante la anulación, que revierte todos esos efectos.
type Retiro struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo       string    `gorm:"not null"`

	// Cantidades solicitadas según el tipo.
	CantidadLaminas int     `gorm:"not null;default:0"`
	Largo           float64 `gorm:"not null;default:0"` // metros (tipo metros_lineales)
	Ancho           float64 `gorm:"not null;default:0"`
	AreaSolicitada  float64 `gorm:"not null;default:0"` // m²

	// Derivados al confirmar.
	LaminasConsumidas int     `gorm:"not null"`
	UsoSobros         bool    `gorm:"not null;default:false"`
	AreaDeSobros      float64 `gorm:"not null;default:0"` // m² servidos desde sobros

	CostoTotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioVentaTotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// PrecioCobrado puede ser ajustado por el operador; la ganancia se
	// calcula siempre contra este valor.
	PrecioCobrado decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Ganancia      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Proyecto  string    `gorm:"not null"`
	Cliente   string
	UsuarioID uuid.UUID `gorm:"type:uuid;not null;index"`
	Fecha     time.Time `gorm:"not null"`

	// SobroGeneradoID enlaza el sobro creado como subproducto de este retiro.
	SobroGeneradoID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time

	Material *Material `gorm:"foreignKey:MaterialID"`
	Usuario  *Usuario  `gorm:"foreignKey:UsuarioID"`
}

func (Retiro) TableName() string { return "retiros" }
