package repository

import (
	"context"

	"granimar/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoMaterialFilter defines filters for listing stock movements.
type MovimientoMaterialFilter struct {
	MaterialID *uuid.UUID
	Tipo       string
	Page       int
	Limit      int
}

type MovimientoMaterialRepository interface {
	Create(ctx context.Context, m *model.MovimientoMaterial) error
	CreateTx(tx *gorm.DB, m *model.MovimientoMaterial) error
	List(ctx context.Context, filter MovimientoMaterialFilter) ([]model.MovimientoMaterial, int64, error)
}

type movimientoMaterialRepo struct{ db *gorm.DB }

func NewMovimientoMaterialRepository(db *gorm.DB) MovimientoMaterialRepository {
	return &movimientoMaterialRepo{db: db}
}

func (r *movimientoMaterialRepo) Create(ctx context.Context, m *model.MovimientoMaterial) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movimientoMaterialRepo) CreateTx(tx *gorm.DB, m *model.MovimientoMaterial) error {
	return tx.Create(m).Error
}

func (r *movimientoMaterialRepo) List(ctx context.Context, filter MovimientoMaterialFilter) ([]model.MovimientoMaterial, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoMaterial{}).Preload("Material")
	if filter.MaterialID != nil {
		q = q.Where("material_id = ?", *filter.MaterialID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movimientos []model.MovimientoMaterial
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&movimientos).Error
	return movimientos, total, err
}
