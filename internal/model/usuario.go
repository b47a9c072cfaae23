package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario es el responsable registrado en cada retiro. No hay login: el
// sistema corre en la red interna del taller y sólo necesita saber quién
// hizo cada operación.
type Usuario struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Email     *string   `gorm:"uniqueIndex"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Usuario) TableName() string { return "usuarios" }
