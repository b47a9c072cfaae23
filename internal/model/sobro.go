package model

import (
	"time"

	"github.com/google/uuid"
)

// NotaSobroUnificado identifica el sobro "bolsa general" por material donde
// la anulación de un retiro devuelve el área que había consumido de sobros.
const NotaSobroUnificado = "sobros generales unificados"

// Sobro es un retazo reutilizable: área sobrante de una lámina cortada.
// Ciclo de vida:
//   - nace al confirmar un retiro que corta láminas enteras y no usa toda
//     el área (RetiroOrigenID enlaza ese retiro), o por registro manual;
//   - se consume cuando un retiro posterior opta por usar sobros antes de
//     cortar láminas nuevas: consumo total marca Usado=true, consumo parcial
//     además inserta un sobro nuevo con el área restante;
//   - se elimina sólo al anular el retiro que lo originó, o se re-agrupa en
//     la bolsa general al anular el retiro que lo consumió.
type Sobro struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MaterialID          uuid.UUID `gorm:"type:uuid;not null;index"`
	AreaMetrosCuadrados float64   `gorm:"not null"`

	// Usable la marca el operador: false = retazo demasiado pequeño o
	// irregular para reutilizar (desecho).
	Usable bool `gorm:"not null;default:true"`
	Usado  bool `gorm:"not null;default:false"`

	// RetiroOrigenID: retiro que generó este sobro como subproducto.
	RetiroOrigenID *uuid.UUID `gorm:"type:uuid;index"`
	// ConsumidoPorRetiroID: retiro que consumió este sobro. Es el enlace que
	// usa la anulación — nada de buscar nombres de proyecto en las notas.
	ConsumidoPorRetiroID *uuid.UUID `gorm:"type:uuid;index"`

	ProyectoOrigen string
	Notas          string

	CreatedAt time.Time
	UpdatedAt time.Time

	Material *Material `gorm:"foreignKey:MaterialID"`
}

func (Sobro) TableName() string { return "sobros" }
