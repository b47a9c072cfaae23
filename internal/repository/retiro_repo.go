package repository

import (
	"context"
	"time"

	"granimar/internal/dto"
	"granimar/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RetiroRepository interface {
	CreateTx(tx *gorm.DB, r *model.Retiro) error
	UpdateTx(tx *gorm.DB, r *model.Retiro) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Retiro, error)
	List(ctx context.Context, filter dto.RetiroFilter) ([]model.Retiro, int64, error)
	// LaminasConsumidasEnMes suma las láminas de los retiros del mes dado —
	// insumo del prorrateo de costos fijos.
	LaminasConsumidasEnMes(ctx context.Context, desde, hasta time.Time) (int, error)
	DB() *gorm.DB
}

type retiroRepo struct{ db *gorm.DB }

func NewRetiroRepository(db *gorm.DB) RetiroRepository { return &retiroRepo{db: db} }

func (r *retiroRepo) CreateTx(tx *gorm.DB, ret *model.Retiro) error { return tx.Create(ret).Error }
func (r *retiroRepo) UpdateTx(tx *gorm.DB, ret *model.Retiro) error { return tx.Save(ret).Error }

func (r *retiroRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Retiro{}, id).Error
}

func (r *retiroRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Retiro, error) {
	var ret model.Retiro
	err := r.db.WithContext(ctx).Preload("Material").Preload("Usuario").First(&ret, id).Error
	return &ret, err
}

func (r *retiroRepo) List(ctx context.Context, filter dto.RetiroFilter) ([]model.Retiro, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Retiro{}).Preload("Material")

	if filter.MaterialID != "" {
		q = q.Where("material_id = ?", filter.MaterialID)
	}
	if filter.Proyecto != "" {
		q = q.Where("proyecto ILIKE ?", "%"+filter.Proyecto+"%")
	}
	if filter.Desde != "" {
		if t, err := time.Parse("2006-01-02", filter.Desde); err == nil {
			q = q.Where("fecha >= ?", t)
		}
	}
	if filter.Hasta != "" {
		if t, err := time.Parse("2006-01-02", filter.Hasta); err == nil {
			q = q.Where("fecha < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var retiros []model.Retiro
	err := q.Order("fecha DESC").Limit(filter.Limit).Offset(offset).Find(&retiros).Error
	return retiros, total, err
}

func (r *retiroRepo) LaminasConsumidasEnMes(ctx context.Context, desde, hasta time.Time) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Retiro{}).
		Where("fecha >= ? AND fecha < ?", desde, hasta).
		Select("COALESCE(SUM(laminas_consumidas), 0)").
		Scan(&total).Error
	return int(total), err
}

func (r *retiroRepo) DB() *gorm.DB { return r.db }
