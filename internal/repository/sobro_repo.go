package repository

import (
	"context"

	"granimar/internal/dto"
	"granimar/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SobroRepository interface {
	Create(ctx context.Context, s *model.Sobro) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sobro, error)
	List(ctx context.Context, filter dto.SobroFilter) ([]model.Sobro, int64, error)
	Update(ctx context.Context, s *model.Sobro) error
	Delete(ctx context.Context, id uuid.UUID) error

	// SumAreaDisponible suma el área de todos los sobros usables y sin usar
	// del material, sin límite de paginación.
	SumAreaDisponible(ctx context.Context, materialID uuid.UUID) (float64, error)
	// ListDisponibles es la variante sin transacción de ListDisponiblesTx.
	ListDisponibles(ctx context.Context, materialID uuid.UUID) ([]model.Sobro, error)

	// ListDisponiblesTx devuelve los sobros usables y sin usar de un material,
	// ordenados por área descendente (consumir el más grande primero minimiza
	// la cantidad de fragmentos).
	ListDisponiblesTx(tx *gorm.DB, materialID uuid.UUID) ([]model.Sobro, error)
	CreateTx(tx *gorm.DB, s *model.Sobro) error
	UpdateTx(tx *gorm.DB, s *model.Sobro) error
	DeleteByRetiroOrigenTx(tx *gorm.DB, retiroID uuid.UUID) error
	ListConsumidosPorRetiroTx(tx *gorm.DB, retiroID uuid.UUID) ([]model.Sobro, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	// FindUnificadoTx busca la bolsa general de sobros del material
	// (usable, sin usar, nota NotaSobroUnificado).
	FindUnificadoTx(tx *gorm.DB, materialID uuid.UUID) (*model.Sobro, error)
}

type sobroRepo struct{ db *gorm.DB }

func NewSobroRepository(db *gorm.DB) SobroRepository { return &sobroRepo{db: db} }

func (r *sobroRepo) Create(ctx context.Context, s *model.Sobro) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sobroRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sobro, error) {
	var s model.Sobro
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *sobroRepo) List(ctx context.Context, filter dto.SobroFilter) ([]model.Sobro, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sobro{}).Preload("Material")

	if filter.MaterialID != "" {
		q = q.Where("material_id = ?", filter.MaterialID)
	}
	switch filter.Estado {
	case "usados":
		q = q.Where("usado = true")
	case "all":
		// no filter
	default: // disponibles
		q = q.Where("usable = true AND usado = false")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var sobros []model.Sobro
	err := q.Order("area_metros_cuadrados DESC").Limit(filter.Limit).Offset(offset).Find(&sobros).Error
	return sobros, total, err
}

func (r *sobroRepo) Update(ctx context.Context, s *model.Sobro) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sobroRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Sobro{}, id).Error
}

func (r *sobroRepo) SumAreaDisponible(ctx context.Context, materialID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&model.Sobro{}).
		Where("material_id = ? AND usable = true AND usado = false", materialID).
		Select("COALESCE(SUM(area_metros_cuadrados), 0)").
		Scan(&total).Error
	return total, err
}

func (r *sobroRepo) ListDisponibles(ctx context.Context, materialID uuid.UUID) ([]model.Sobro, error) {
	return r.ListDisponiblesTx(r.db.WithContext(ctx), materialID)
}

func (r *sobroRepo) ListDisponiblesTx(tx *gorm.DB, materialID uuid.UUID) ([]model.Sobro, error) {
	var sobros []model.Sobro
	err := tx.Where("material_id = ? AND usable = true AND usado = false", materialID).
		Order("area_metros_cuadrados DESC").
		Find(&sobros).Error
	return sobros, err
}

func (r *sobroRepo) CreateTx(tx *gorm.DB, s *model.Sobro) error { return tx.Create(s).Error }
func (r *sobroRepo) UpdateTx(tx *gorm.DB, s *model.Sobro) error { return tx.Save(s).Error }

func (r *sobroRepo) DeleteByRetiroOrigenTx(tx *gorm.DB, retiroID uuid.UUID) error {
	return tx.Where("retiro_origen_id = ?", retiroID).Delete(&model.Sobro{}).Error
}

func (r *sobroRepo) ListConsumidosPorRetiroTx(tx *gorm.DB, retiroID uuid.UUID) ([]model.Sobro, error) {
	var sobros []model.Sobro
	err := tx.Where("consumido_por_retiro_id = ?", retiroID).Find(&sobros).Error
	return sobros, err
}

func (r *sobroRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Sobro{}, id).Error
}

func (r *sobroRepo) FindUnificadoTx(tx *gorm.DB, materialID uuid.UUID) (*model.Sobro, error) {
	var s model.Sobro
	err := tx.Where("material_id = ? AND usable = true AND usado = false AND notas = ?",
		materialID, model.NotaSobroUnificado).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
