package repository

import (
	"context"
	"time"

	"granimar/internal/dto"
	"granimar/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FacturaRepository interface {
	CreateTx(tx *gorm.DB, f *model.Factura) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error)
	List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error)
	Update(ctx context.Context, f *model.Factura) error
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	CreatePagoTx(tx *gorm.DB, p *model.FacturaPago) error
	NextNumero(ctx context.Context, tx *gorm.DB) (int, error)
	// ListPendingRetries devuelve facturas con documento pendiente cuya
	// próxima reintentada ya venció — las consume el retry cron.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Factura, error)
	DB() *gorm.DB
}

type facturaRepo struct{ db *gorm.DB }

func NewFacturaRepository(db *gorm.DB) FacturaRepository { return &facturaRepo{db: db} }

func (r *facturaRepo) CreateTx(tx *gorm.DB, f *model.Factura) error { return tx.Create(f).Error }

func (r *facturaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).Preload("Items").Preload("Pagos").First(&f, id).Error
	return &f, err
}

func (r *facturaRepo) List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Factura{}).Preload("Items").Preload("Pagos")

	if filter.Cliente != "" {
		q = q.Where("cliente ILIKE ?", "%"+filter.Cliente+"%")
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var facturas []model.Factura
	err := q.Order("numero DESC").Limit(filter.Limit).Offset(offset).Find(&facturas).Error
	return facturas, total, err
}

func (r *facturaRepo) Update(ctx context.Context, f *model.Factura) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *facturaRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Factura{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *facturaRepo) CreatePagoTx(tx *gorm.DB, p *model.FacturaPago) error {
	return tx.Create(p).Error
}

func (r *facturaRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int, error) {
	var max int64
	err := tx.Model(&model.Factura{}).Select("COALESCE(MAX(numero), 0)").Scan(&max).Error
	return int(max) + 1, err
}

func (r *facturaRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Factura, error) {
	var facturas []model.Factura
	err := r.db.WithContext(ctx).Preload("Items").
		Where("estado_documento = 'pendiente' AND next_retry_at IS NOT NULL AND next_retry_at <= ?", now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&facturas).Error
	return facturas, err
}

func (r *facturaRepo) DB() *gorm.DB { return r.db }
