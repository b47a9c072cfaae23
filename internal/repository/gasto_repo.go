package repository

import (
	"context"
	"time"

	"granimar/internal/dto"
	"granimar/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GastoRepository interface {
	Create(ctx context.Context, g *model.Gasto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Gasto, error)
	List(ctx context.Context, filter dto.GastoFilter) ([]model.Gasto, int64, error)
	ListPorMes(ctx context.Context, desde, hasta time.Time) ([]model.Gasto, error)
	Update(ctx context.Context, g *model.Gasto) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type gastoRepo struct{ db *gorm.DB }

func NewGastoRepository(db *gorm.DB) GastoRepository { return &gastoRepo{db: db} }

func (r *gastoRepo) Create(ctx context.Context, g *model.Gasto) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *gastoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Gasto, error) {
	var g model.Gasto
	err := r.db.WithContext(ctx).First(&g, id).Error
	return &g, err
}

func (r *gastoRepo) List(ctx context.Context, filter dto.GastoFilter) ([]model.Gasto, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Gasto{})

	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}
	if filter.Mes != "" {
		if t, err := time.Parse("2006-01", filter.Mes); err == nil {
			q = q.Where("fecha >= ? AND fecha < ?", t, t.AddDate(0, 1, 0))
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var gastos []model.Gasto
	err := q.Order("fecha DESC").Limit(filter.Limit).Offset(offset).Find(&gastos).Error
	return gastos, total, err
}

func (r *gastoRepo) ListPorMes(ctx context.Context, desde, hasta time.Time) ([]model.Gasto, error) {
	var gastos []model.Gasto
	err := r.db.WithContext(ctx).
		Where("fecha >= ? AND fecha < ?", desde, hasta).
		Find(&gastos).Error
	return gastos, err
}

func (r *gastoRepo) Update(ctx context.Context, g *model.Gasto) error {
	return r.db.WithContext(ctx).Save(g).Error
}

func (r *gastoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Gasto{}, id).Error
}
