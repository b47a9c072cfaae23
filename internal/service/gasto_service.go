package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"granimar/internal/dto"
	"granimar/internal/model"
	"granimar/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GastoService interface {
	Crear(ctx context.Context, req dto.CrearGastoRequest) (*dto.GastoResponse, error)
	Listar(ctx context.Context, filter dto.GastoFilter) (*dto.GastoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarGastoRequest) (*dto.GastoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	// ResumenMensual cierra el mes: totales de gastos fijos y variables más
	// el prorrateo del fijo entre las láminas consumidas.
	ResumenMensual(ctx context.Context, mes string) (*dto.ResumenGastosResponse, error)
}

type gastoService struct {
	repo       repository.GastoRepository
	retiroRepo repository.RetiroRepository
}

func NewGastoService(repo repository.GastoRepository, retiroRepo repository.RetiroRepository) GastoService {
	return &gastoService{repo: repo, retiroRepo: retiroRepo}
}

func (s *gastoService) Crear(ctx context.Context, req dto.CrearGastoRequest) (*dto.GastoResponse, error) {
	if req.Monto.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCantidadInvalida
	}
	fecha := time.Now()
	if req.Fecha != "" {
		t, err := time.Parse("2006-01-02", req.Fecha)
		if err != nil {
			return nil, fmt.Errorf("fecha inválida: %w", err)
		}
		fecha = t
	}
	g := model.Gasto{
		Categoria:   req.Categoria,
		Descripcion: req.Descripcion,
		Monto:       req.Monto,
		Fijo:        req.Fijo,
		Fecha:       fecha,
	}
	if err := s.repo.Create(ctx, &g); err != nil {
		return nil, err
	}
	return gastoToResponse(&g), nil
}

func (s *gastoService) Listar(ctx context.Context, filter dto.GastoFilter) (*dto.GastoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	gastos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.GastoResponse, 0, len(gastos))
	for i := range gastos {
		items = append(items, *gastoToResponse(&gastos[i]))
	}
	return &dto.GastoListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *gastoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarGastoRequest) (*dto.GastoResponse, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("gasto no encontrado")
	}
	if req.Categoria != nil {
		g.Categoria = *req.Categoria
	}
	if req.Descripcion != nil {
		g.Descripcion = *req.Descripcion
	}
	if req.Monto != nil {
		if req.Monto.LessThanOrEqual(decimal.Zero) {
			return nil, ErrCantidadInvalida
		}
		g.Monto = *req.Monto
	}
	if req.Fijo != nil {
		g.Fijo = *req.Fijo
	}
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	return gastoToResponse(g), nil
}

func (s *gastoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *gastoService) ResumenMensual(ctx context.Context, mes string) (*dto.ResumenGastosResponse, error) {
	desde, err := time.Parse("2006-01", mes)
	if err != nil {
		return nil, fmt.Errorf("mes inválido (use YYYY-MM): %w", err)
	}
	hasta := desde.AddDate(0, 1, 0)

	gastos, err := s.repo.ListPorMes(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}
	laminas, err := s.retiroRepo.LaminasConsumidasEnMes(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}

	totalFijos := decimal.Zero
	totalVariables := decimal.Zero
	porCategoria := make(map[string]decimal.Decimal)
	for _, g := range gastos {
		if g.Fijo {
			totalFijos = totalFijos.Add(g.Monto)
		} else {
			totalVariables = totalVariables.Add(g.Monto)
		}
		porCategoria[g.Categoria] = porCategoria[g.Categoria].Add(g.Monto)
	}

	return &dto.ResumenGastosResponse{
		Mes:                mes,
		TotalFijos:         totalFijos,
		TotalVariables:     totalVariables,
		Total:              totalFijos.Add(totalVariables),
		LaminasConsumidas:  laminas,
		CostoFijoPorLamina: ProrratearCostosFijos(totalFijos, laminas),
		PorCategoria:       porCategoria,
	}, nil
}

// ProrratearCostosFijos reparte el total de gastos fijos del mes entre las
// láminas consumidas, dando el costo indirecto por lámina. Sin consumo el
// prorrateo es cero: no hay entre qué repartir.
func ProrratearCostosFijos(totalFijos decimal.Decimal, laminasConsumidas int) decimal.Decimal {
	if laminasConsumidas <= 0 {
		return decimal.Zero
	}
	return totalFijos.Div(decimal.NewFromInt(int64(laminasConsumidas))).Round(2)
}

func gastoToResponse(g *model.Gasto) *dto.GastoResponse {
	return &dto.GastoResponse{
		ID:          g.ID.String(),
		Categoria:   g.Categoria,
		Descripcion: g.Descripcion,
		Monto:       g.Monto,
		Fijo:        g.Fijo,
		Fecha:       g.Fecha.Format("2006-01-02"),
	}
}
