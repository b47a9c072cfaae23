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
	"gorm.io/gorm"
)

type PrestamoService interface {
	Crear(ctx context.Context, req dto.CrearPrestamoRequest) (*dto.PrestamoResponse, error)
	Listar(ctx context.Context, estado string) ([]dto.PrestamoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.PrestamoResponse, error)
	RegistrarAbono(ctx context.Context, prestamoID uuid.UUID, req dto.RegistrarAbonoRequest) (*dto.AbonoResponse, error)
	EliminarAbono(ctx context.Context, prestamoID, abonoID uuid.UUID) error
}

type prestamoService struct {
	repo repository.PrestamoRepository
}

func NewPrestamoService(repo repository.PrestamoRepository) PrestamoService {
	return &prestamoService{repo: repo}
}

func (s *prestamoService) Crear(ctx context.Context, req dto.CrearPrestamoRequest) (*dto.PrestamoResponse, error) {
	if req.Principal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCantidadInvalida
	}
	if req.TasaAnualPct.IsNegative() {
		return nil, errors.New("la tasa anual no puede ser negativa")
	}

	fechaInicio := time.Now()
	if req.FechaInicio != "" {
		t, err := time.Parse("2006-01-02", req.FechaInicio)
		if err != nil {
			return nil, fmt.Errorf("fecha_inicio inválida: %w", err)
		}
		fechaInicio = t
	}

	p := model.Prestamo{
		Entidad:      req.Entidad,
		Descripcion:  req.Descripcion,
		Principal:    req.Principal,
		TasaAnualPct: req.TasaAnualPct,
		PlazoMeses:   req.PlazoMeses,
		CuotaMensual: CalcularCuota(req.Principal, req.TasaAnualPct, req.PlazoMeses),
		Saldo:        req.Principal,
		Estado:       "activo",
		FechaInicio:  fechaInicio,
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	return prestamoToResponse(&p, false), nil
}

func (s *prestamoService) Listar(ctx context.Context, estado string) ([]dto.PrestamoResponse, error) {
	prestamos, err := s.repo.List(ctx, estado)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PrestamoResponse, 0, len(prestamos))
	for i := range prestamos {
		out = append(out, *prestamoToResponse(&prestamos[i], false))
	}
	return out, nil
}

func (s *prestamoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.PrestamoResponse, error) {
	p, err := s.repo.FindByIDConAbonos(ctx, id)
	if err != nil {
		return nil, errors.New("préstamo no encontrado")
	}
	return prestamoToResponse(p, true), nil
}

// RegistrarAbono divide el pago en capital e interés, valida que la división
// cuadre y descuenta el capital del saldo — todo en una transacción. Cuando
// el saldo llega a cero el préstamo pasa a "cancelado".
func (s *prestamoService) RegistrarAbono(ctx context.Context, prestamoID uuid.UUID, req dto.RegistrarAbonoRequest) (*dto.AbonoResponse, error) {
	if req.Monto.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCantidadInvalida
	}

	p, err := s.repo.FindByID(ctx, prestamoID)
	if err != nil {
		return nil, errors.New("préstamo no encontrado")
	}
	if p.Estado != "activo" {
		return nil, errors.New("el préstamo ya está cancelado")
	}

	capital, interes := CalcularAbono(p.Saldo, p.TasaAnualPct, req.Monto)
	if err := ValidarAbono(capital, interes, req.Monto); err != nil {
		return nil, err
	}

	fecha := time.Now()
	if req.Fecha != "" {
		t, err := time.Parse("2006-01-02", req.Fecha)
		if err != nil {
			return nil, fmt.Errorf("fecha inválida: %w", err)
		}
		fecha = t
	}

	var abono model.AbonoPrestamo
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p.Saldo = p.Saldo.Sub(capital)
		if p.Saldo.LessThanOrEqual(decimal.Zero) {
			p.Saldo = decimal.Zero
			p.Estado = "cancelado"
		}

		abono = model.AbonoPrestamo{
			PrestamoID:     prestamoID,
			Monto:          req.Monto.Round(2),
			PorcionCapital: capital,
			PorcionInteres: interes,
			SaldoDespues:   p.Saldo,
			Fecha:          fecha,
		}
		if err := s.repo.CreateAbonoTx(tx, &abono); err != nil {
			return err
		}
		return s.repo.UpdateTx(tx, p)
	})
	if txErr != nil {
		return nil, txErr
	}

	return abonoToResponse(&abono), nil
}

// EliminarAbono revierte un pago: devuelve el capital al saldo y borra el
// registro. Un préstamo cancelado vuelve a "activo" si recupera saldo.
func (s *prestamoService) EliminarAbono(ctx context.Context, prestamoID, abonoID uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, prestamoID)
	if err != nil {
		return errors.New("préstamo no encontrado")
	}
	abono, err := s.repo.FindAbonoByID(ctx, abonoID)
	if err != nil || abono.PrestamoID != prestamoID {
		return errors.New("abono no encontrado")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p.Saldo = p.Saldo.Add(abono.PorcionCapital)
		if p.Saldo.GreaterThan(decimal.Zero) {
			p.Estado = "activo"
		}
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return err
		}
		return s.repo.DeleteAbonoTx(tx, abonoID)
	})
}

func prestamoToResponse(p *model.Prestamo, conAbonos bool) *dto.PrestamoResponse {
	resp := &dto.PrestamoResponse{
		ID:           p.ID.String(),
		Entidad:      p.Entidad,
		Descripcion:  p.Descripcion,
		Principal:    p.Principal,
		TasaAnualPct: p.TasaAnualPct,
		PlazoMeses:   p.PlazoMeses,
		CuotaMensual: p.CuotaMensual,
		Saldo:        p.Saldo,
		Estado:       p.Estado,
		FechaInicio:  p.FechaInicio.Format("2006-01-02"),
	}
	if conAbonos {
		resp.Abonos = make([]dto.AbonoResponse, 0, len(p.Abonos))
		for i := range p.Abonos {
			resp.Abonos = append(resp.Abonos, *abonoToResponse(&p.Abonos[i]))
		}
	}
	return resp
}

func abonoToResponse(a *model.AbonoPrestamo) *dto.AbonoResponse {
	return &dto.AbonoResponse{
		ID:             a.ID.String(),
		Monto:          a.Monto,
		PorcionCapital: a.PorcionCapital,
		PorcionInteres: a.PorcionInteres,
		SaldoDespues:   a.SaldoDespues,
		Fecha:          a.Fecha.Format("2006-01-02"),
	}
}
