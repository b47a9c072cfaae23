package repository

import (
	"context"

	"granimar/internal/dto"
	"granimar/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaterialRepository defines the data access contract for materials.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type MaterialRepository interface {
	Create(ctx context.Context, m *model.Material) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error)
	List(ctx context.Context, filter dto.MaterialFilter) ([]model.Material, int64, error)
	ListBajoStockMinimo(ctx context.Context) ([]model.Material, error)
	Update(ctx context.Context, m *model.Material) error
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error

	// AjustarStock incrementa o decrementa laminas_stock fuera de transaccion
	// (entradas y salidas manuales). El guard stock >= -delta evita dejar el
	// inventario negativo.
	AjustarStock(ctx context.Context, id uuid.UUID, delta int) error

	// Used inside transactions — callers must pass the tx instance.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Material, error)
	DescontarStockTx(tx *gorm.DB, id uuid.UUID, laminas int) error
	ReponerStockTx(tx *gorm.DB, id uuid.UUID, laminas int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type materialRepo struct{ db *gorm.DB }

func NewMaterialRepository(db *gorm.DB) MaterialRepository { return &materialRepo{db: db} }

func (r *materialRepo) Create(ctx context.Context, m *model.Material) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *materialRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	var m model.Material
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *materialRepo) List(ctx context.Context, filter dto.MaterialFilter) ([]model.Material, int64, error) {
	var materiales []model.Material
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Material{})

	// Activo filter: "false" = inactivos, "all" = todos, default = activos
	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}

	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&materiales).Error
	return materiales, total, err
}

func (r *materialRepo) ListBajoStockMinimo(ctx context.Context) ([]model.Material, error) {
	var materiales []model.Material
	err := r.db.WithContext(ctx).
		Where("activo = true AND laminas_stock < stock_minimo").
		Order("laminas_stock ASC").
		Find(&materiales).Error
	return materiales, err
}

func (r *materialRepo) Update(ctx context.Context, m *model.Material) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *materialRepo) Desactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Material{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *materialRepo) Reactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Material{}).Where("id = ?", id).Update("activo", true).Error
}

func (r *materialRepo) AjustarStock(ctx context.Context, id uuid.UUID, delta int) error {
	res := r.db.WithContext(ctx).Model(&model.Material{}).
		Where("id = ? AND activo = true AND laminas_stock + ? >= 0", id, delta).
		Update("laminas_stock", gorm.Expr("laminas_stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *materialRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Material, error) {
	var m model.Material
	err := tx.First(&m, id).Error
	return &m, err
}

// DescontarStockTx resta láminas de forma atómica. El WHERE con el guard de
// stock hace de compare-and-swap: dos retiros concurrentes sobre el mismo
// material no pueden dejar laminas_stock negativo.
func (r *materialRepo) DescontarStockTx(tx *gorm.DB, id uuid.UUID, laminas int) error {
	res := tx.Model(&model.Material{}).
		Where("id = ? AND laminas_stock >= ?", id, laminas).
		Update("laminas_stock", gorm.Expr("laminas_stock - ?", laminas))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *materialRepo) ReponerStockTx(tx *gorm.DB, id uuid.UUID, laminas int) error {
	return tx.Model(&model.Material{}).Where("id = ?", id).
		Update("laminas_stock", gorm.Expr("laminas_stock + ?", laminas)).Error
}

func (r *materialRepo) DB() *gorm.DB { return r.db }
