package service

import (
	"context"
	"errors"
	"fmt"

	"granimar/internal/dto"
	"granimar/internal/model"
	"granimar/internal/repository"

	"github.com/google/uuid"
)

// MaterialService maneja el catálogo de materiales y los ajustes manuales de
// bodega (entradas por compra, salidas por rotura, conteos).
type MaterialService interface {
	Crear(ctx context.Context, req dto.CrearMaterialRequest) (*dto.MaterialResponse, error)
	Listar(ctx context.Context, filter dto.MaterialFilter) (*dto.MaterialListResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarMaterialRequest) (*dto.MaterialResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjusteStockRequest) error
	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
	// ListarMovimientos es la bitácora de stock: cada retiro, anulación y
	// ajuste manual con el stock antes y después.
	ListarMovimientos(ctx context.Context, materialID *uuid.UUID, tipo string, page, limit int) (*dto.MovimientoListResponse, error)
}

type materialService struct {
	repo    repository.MaterialRepository
	movRepo repository.MovimientoMaterialRepository
}

func NewMaterialService(repo repository.MaterialRepository, movRepo repository.MovimientoMaterialRepository) MaterialService {
	return &materialService{repo: repo, movRepo: movRepo}
}

func (s *materialService) Crear(ctx context.Context, req dto.CrearMaterialRequest) (*dto.MaterialResponse, error) {
	m := model.Material{
		Nombre:                 req.Nombre,
		Color:                  req.Color,
		LaminasStock:           req.LaminasStock,
		StockMinimo:            req.StockMinimo,
		CostoPorLamina:         req.CostoPorLamina,
		PrecioVentaPorLamina:   req.PrecioVentaPorLamina,
		PrecioPorMetroLineal:   req.PrecioPorMetroLineal,
		PrecioPorMetroCuadrado: req.PrecioPorMetroCuadrado,
		Activo:                 true,
	}
	if m.CostoPorLamina.IsNegative() || m.PrecioVentaPorLamina.IsNegative() ||
		m.PrecioPorMetroLineal.IsNegative() || m.PrecioPorMetroCuadrado.IsNegative() {
		return nil, errors.New("los precios no pueden ser negativos")
	}
	if err := s.repo.Create(ctx, &m); err != nil {
		return nil, err
	}
	return materialToResponse(&m), nil
}

func (s *materialService) Listar(ctx context.Context, filter dto.MaterialFilter) (*dto.MaterialListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	materiales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(materiales))
	for i := range materiales {
		items = append(items, *materialToResponse(&materiales[i]))
	}
	return &dto.MaterialListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *materialService) Obtener(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("material no encontrado")
	}
	return materialToResponse(m), nil
}

func (s *materialService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarMaterialRequest) (*dto.MaterialResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("material no encontrado")
	}
	if req.Nombre != nil {
		m.Nombre = *req.Nombre
	}
	if req.Color != nil {
		m.Color = req.Color
	}
	if req.StockMinimo != nil {
		m.StockMinimo = *req.StockMinimo
	}
	if req.CostoPorLamina != nil {
		m.CostoPorLamina = *req.CostoPorLamina
	}
	if req.PrecioVentaPorLamina != nil {
		m.PrecioVentaPorLamina = *req.PrecioVentaPorLamina
	}
	if req.PrecioPorMetroLineal != nil {
		m.PrecioPorMetroLineal = *req.PrecioPorMetroLineal
	}
	if req.PrecioPorMetroCuadrado != nil {
		m.PrecioPorMetroCuadrado = *req.PrecioPorMetroCuadrado
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return materialToResponse(m), nil
}

func (s *materialService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Desactivar(ctx, id)
}

func (s *materialService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivar(ctx, id)
}

// AjustarStock aplica una entrada (delta positivo) o salida (negativo) manual
// y deja rastro en la bitácora. El repo rechaza ajustes que dejarían el
// stock negativo.
func (s *materialService) AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjusteStockRequest) error {
	if req.Laminas == 0 {
		return ErrCantidadInvalida
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("material no encontrado")
	}
	if m.LaminasStock+req.Laminas < 0 {
		return &StockInsuficienteError{Requeridas: -req.Laminas, Disponibles: m.LaminasStock}
	}
	if err := s.repo.AjustarStock(ctx, id, req.Laminas); err != nil {
		return fmt.Errorf("error ajustando stock de %s: %w", m.Nombre, err)
	}

	tipo := "entrada"
	if req.Laminas < 0 {
		tipo = "salida"
	}
	mov := &model.MovimientoMaterial{
		MaterialID:    id,
		Tipo:          tipo,
		Laminas:       req.Laminas,
		StockAnterior: m.LaminasStock,
		StockNuevo:    m.LaminasStock + req.Laminas,
		Motivo:        req.Motivo,
	}
	return s.movRepo.Create(ctx, mov)
}

func (s *materialService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	materiales, err := s.repo.ListBajoStockMinimo(ctx)
	if err != nil {
		return nil, err
	}
	alertas := make([]dto.AlertaStockResponse, 0, len(materiales))
	for _, m := range materiales {
		alertas = append(alertas, dto.AlertaStockResponse{
			MaterialID:   m.ID.String(),
			Nombre:       m.Nombre,
			LaminasStock: m.LaminasStock,
			StockMinimo:  m.StockMinimo,
		})
	}
	return alertas, nil
}

func (s *materialService) ListarMovimientos(ctx context.Context, materialID *uuid.UUID, tipo string, page, limit int) (*dto.MovimientoListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 100
	}
	movimientos, total, err := s.movRepo.List(ctx, repository.MovimientoMaterialFilter{
		MaterialID: materialID,
		Tipo:       tipo,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	resp := &dto.MovimientoListResponse{Total: total, Page: page, Limit: limit}
	for _, mov := range movimientos {
		item := dto.MovimientoResponse{
			ID:            mov.ID.String(),
			MaterialID:    mov.MaterialID.String(),
			Tipo:          mov.Tipo,
			Laminas:       mov.Laminas,
			StockAnterior: mov.StockAnterior,
			StockNuevo:    mov.StockNuevo,
			Motivo:        mov.Motivo,
			Fecha:         mov.CreatedAt.Format("2006-01-02 15:04"),
		}
		if mov.Material != nil {
			item.Material = mov.Material.Nombre
		}
		if mov.ReferenciaID != nil {
			ref := mov.ReferenciaID.String()
			item.ReferenciaID = &ref
		}
		resp.Data = append(resp.Data, item)
	}
	return resp, nil
}

func materialToResponse(m *model.Material) *dto.MaterialResponse {
	return &dto.MaterialResponse{
		ID:                     m.ID.String(),
		Nombre:                 m.Nombre,
		Color:                  m.Color,
		LaminasStock:           m.LaminasStock,
		StockMinimo:            m.StockMinimo,
		CostoPorLamina:         m.CostoPorLamina,
		PrecioVentaPorLamina:   m.PrecioVentaPorLamina,
		PrecioPorMetroLineal:   m.PrecioPorMetroLineal,
		PrecioPorMetroCuadrado: m.PrecioPorMetroCuadrado,
		Activo:                 m.Activo,
	}
}
