package repository

import (
	"context"

	"granimar/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrestamoRepository interface {
	Create(ctx context.Context, p *model.Prestamo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Prestamo, error)
	FindByIDConAbonos(ctx context.Context, id uuid.UUID) (*model.Prestamo, error)
	List(ctx context.Context, estado string) ([]model.Prestamo, error)

	UpdateTx(tx *gorm.DB, p *model.Prestamo) error
	CreateAbonoTx(tx *gorm.DB, a *model.AbonoPrestamo) error
	FindAbonoByID(ctx context.Context, id uuid.UUID) (*model.AbonoPrestamo, error)
	DeleteAbonoTx(tx *gorm.DB, id uuid.UUID) error

	DB() *gorm.DB
}

type prestamoRepo struct{ db *gorm.DB }

func NewPrestamoRepository(db *gorm.DB) PrestamoRepository { return &prestamoRepo{db: db} }

func (r *prestamoRepo) Create(ctx context.Context, p *model.Prestamo) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *prestamoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Prestamo, error) {
	var p model.Prestamo
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *prestamoRepo) FindByIDConAbonos(ctx context.Context, id uuid.UUID) (*model.Prestamo, error) {
	var p model.Prestamo
	err := r.db.WithContext(ctx).
		Preload("Abonos", func(db *gorm.DB) *gorm.DB { return db.Order("fecha ASC") }).
		First(&p, id).Error
	return &p, err
}

func (r *prestamoRepo) List(ctx context.Context, estado string) ([]model.Prestamo, error) {
	q := r.db.WithContext(ctx).Model(&model.Prestamo{})
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	var prestamos []model.Prestamo
	err := q.Order("fecha_inicio DESC").Find(&prestamos).Error
	return prestamos, err
}

func (r *prestamoRepo) UpdateTx(tx *gorm.DB, p *model.Prestamo) error { return tx.Save(p).Error }

func (r *prestamoRepo) CreateAbonoTx(tx *gorm.DB, a *model.AbonoPrestamo) error {
	return tx.Create(a).Error
}

func (r *prestamoRepo) FindAbonoByID(ctx context.Context, id uuid.UUID) (*model.AbonoPrestamo, error) {
	var a model.AbonoPrestamo
	err := r.db.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *prestamoRepo) DeleteAbonoTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.AbonoPrestamo{}, id).Error
}

func (r *prestamoRepo) DB() *gorm.DB { return r.db }
