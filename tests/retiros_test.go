package tests

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"granimar/internal/dto"
	"granimar/internal/model"
	"granimar/internal/repository"
	"granimar/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubSobroRepo is an in-memory SobroRepository. Listing always orders by
// area descending, like the real repo.
type stubSobroRepo struct {
	sobros map[uuid.UUID]*model.Sobro
}

func newStubSobroRepo() *stubSobroRepo {
	return &stubSobroRepo{sobros: make(map[uuid.UUID]*model.Sobro)}
}

func (r *stubSobroRepo) Create(_ context.Context, s *model.Sobro) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.sobros[s.ID] = &cp
	return nil
}

func (r *stubSobroRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sobro, error) {
	s, ok := r.sobros[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSobroRepo) List(_ context.Context, filter dto.SobroFilter) ([]model.Sobro, int64, error) {
	var out []model.Sobro
	for _, s := range r.sobros {
		if filter.MaterialID != "" && s.MaterialID.String() != filter.MaterialID {
			continue
		}
		switch filter.Estado {
		case "usados":
			if !s.Usado {
				continue
			}
		case "all":
		default: // disponibles
			if !s.Usable || s.Usado {
				continue
			}
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AreaMetrosCuadrados > out[j].AreaMetrosCuadrados
	})
	total := int64(len(out))
	if filter.Limit > 0 {
		offset := (filter.Page - 1) * filter.Limit
		if offset < 0 {
			offset = 0
		}
		if offset > len(out) {
			offset = len(out)
		}
		end := offset + filter.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[offset:end]
	}
	return out, total, nil
}

func (r *stubSobroRepo) SumAreaDisponible(_ context.Context, materialID uuid.UUID) (float64, error) {
	total := 0.0
	for _, s := range r.sobros {
		if s.MaterialID == materialID && s.Usable && !s.Usado {
			total += s.AreaMetrosCuadrados
		}
	}
	return total, nil
}

func (r *stubSobroRepo) ListDisponibles(_ context.Context, materialID uuid.UUID) ([]model.Sobro, error) {
	return r.ListDisponiblesTx(nil, materialID)
}

func (r *stubSobroRepo) Update(_ context.Context, s *model.Sobro) error {
	cp := *s
	r.sobros[s.ID] = &cp
	return nil
}

func (r *stubSobroRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.sobros, id)
	return nil
}

func (r *stubSobroRepo) ListDisponiblesTx(_ *gorm.DB, materialID uuid.UUID) ([]model.Sobro, error) {
	out, _, _ := r.List(context.Background(), dto.SobroFilter{MaterialID: materialID.String()})
	return out, nil
}

func (r *stubSobroRepo) CreateTx(_ *gorm.DB, s *model.Sobro) error {
	return r.Create(context.Background(), s)
}

func (r *stubSobroRepo) UpdateTx(_ *gorm.DB, s *model.Sobro) error {
	return r.Update(context.Background(), s)
}

func (r *stubSobroRepo) DeleteByRetiroOrigenTx(_ *gorm.DB, retiroID uuid.UUID) error {
	for id, s := range r.sobros {
		if s.RetiroOrigenID != nil && *s.RetiroOrigenID == retiroID {
			delete(r.sobros, id)
		}
	}
	return nil
}

func (r *stubSobroRepo) ListConsumidosPorRetiroTx(_ *gorm.DB, retiroID uuid.UUID) ([]model.Sobro, error) {
	var out []model.Sobro
	for _, s := range r.sobros {
		if s.ConsumidoPorRetiroID != nil && *s.ConsumidoPorRetiroID == retiroID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSobroRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.sobros, id)
	return nil
}

func (r *stubSobroRepo) FindUnificadoTx(_ *gorm.DB, materialID uuid.UUID) (*model.Sobro, error) {
	for _, s := range r.sobros {
		if s.MaterialID == materialID && s.Usable && !s.Usado && s.Notas == model.NotaSobroUnificado {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.SobroRepository = (*stubSobroRepo)(nil)

// stubRetiroRepo is an in-memory RetiroRepository.
type stubRetiroRepo struct {
	retiros map[uuid.UUID]*model.Retiro
}

func newStubRetiroRepo() *stubRetiroRepo {
	return &stubRetiroRepo{retiros: make(map[uuid.UUID]*model.Retiro)}
}

func (r *stubRetiroRepo) CreateTx(_ *gorm.DB, ret *model.Retiro) error {
	if ret.ID == uuid.Nil {
		ret.ID = uuid.New()
	}
	cp := *ret
	r.retiros[ret.ID] = &cp
	return nil
}

func (r *stubRetiroRepo) UpdateTx(_ *gorm.DB, ret *model.Retiro) error {
	cp := *ret
	r.retiros[ret.ID] = &cp
	return nil
}

func (r *stubRetiroRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.retiros, id)
	return nil
}

func (r *stubRetiroRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Retiro, error) {
	ret, ok := r.retiros[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ret
	return &cp, nil
}

func (r *stubRetiroRepo) List(_ context.Context, filter dto.RetiroFilter) ([]model.Retiro, int64, error) {
	var out []model.Retiro
	for _, ret := range r.retiros {
		if filter.MaterialID != "" && ret.MaterialID.String() != filter.MaterialID {
			continue
		}
		out = append(out, *ret)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	return out, int64(len(out)), nil
}

func (r *stubRetiroRepo) LaminasConsumidasEnMes(_ context.Context, desde, hasta time.Time) (int, error) {
	total := 0
	for _, ret := range r.retiros {
		if !ret.Fecha.Before(desde) && ret.Fecha.Before(hasta) {
			total += ret.LaminasConsumidas
		}
	}
	return total, nil
}

func (r *stubRetiroRepo) DB() *gorm.DB { return nil }

var _ repository.RetiroRepository = (*stubRetiroRepo)(nil)

// stubMaterialRepoCaido envuelve al stub normal y falla las lecturas de
// material para simular una conexión perdida a mitad de operación.
type stubMaterialRepoCaido struct {
	*stubMaterialRepo
	caido bool
}

func (r *stubMaterialRepoCaido) FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	if r.caido {
		return nil, errors.New("conexión perdida")
	}
	return r.stubMaterialRepo.FindByID(ctx, id)
}

var _ repository.MaterialRepository = (*stubMaterialRepoCaido)(nil)

// stubSobroRepoCaido falla la búsqueda de la bolsa general con un error que
// no es un not-found.
type stubSobroRepoCaido struct {
	*stubSobroRepo
	caido bool
}

func (r *stubSobroRepoCaido) FindUnificadoTx(tx *gorm.DB, materialID uuid.UUID) (*model.Sobro, error) {
	if r.caido {
		return nil, errors.New("deadlock detectado")
	}
	return r.stubSobroRepo.FindUnificadoTx(tx, materialID)
}

var _ repository.SobroRepository = (*stubSobroRepoCaido)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func seedSobro(repo *stubSobroRepo, materialID uuid.UUID, area float64) *model.Sobro {
	sb := &model.Sobro{
		MaterialID:          materialID,
		AreaMetrosCuadrados: area,
		Usable:              true,
		ProyectoOrigen:      "proyecto anterior",
	}
	_ = repo.Create(context.Background(), sb)
	return sb
}

func buildRetiroSvc() (service.RetiroService, *stubMaterialRepo, *stubSobroRepo, *stubRetiroRepo, *stubMovimientoRepo) {
	materialRepo := newStubMaterialRepo()
	sobroRepo := newStubSobroRepo()
	retiroRepo := newStubRetiroRepo()
	movRepo := &stubMovimientoRepo{}
	svc := service.NewRetiroService(retiroRepo, materialRepo, sobroRepo, movRepo, service.GeometriaEstandar())
	return svc, materialRepo, sobroRepo, retiroRepo, movRepo
}

func registrarReq(materialID uuid.UUID, calc dto.CalcularRetiroRequest) dto.RegistrarRetiroRequest {
	calc.MaterialID = materialID.String()
	return dto.RegistrarRetiroRequest{
		CalcularRetiroRequest: calc,
		Proyecto:              "Cocina Familia Rojas",
		Cliente:               "Carlos Rojas",
		UsuarioID:             uuid.New().String(),
	}
}

// ── Cálculo (vista previa, sin efectos) ──────────────────────────────────────

func TestCalcularRetiro_MetrosCuadrados(t *testing.T) {
	svc, materialRepo, _, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)

	// 7 m² sobre láminas de 5.12 m²: 2 láminas, residuo 10.24 − 7 = 3.24
	resp, err := svc.Calcular(context.Background(), dto.CalcularRetiroRequest{
		MaterialID: m.ID.String(),
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       7.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.LaminasNecesarias)
	assert.InDelta(t, 3.24, resp.SobroGenerado, 1e-9)
	assert.InDelta(t, 7.0, resp.AreaSolicitada, 1e-9)
	assert.Zero(t, resp.AreaDeSobros)
	assert.Equal(t, "180000", resp.Costo.String())  // 2 × 90000
	assert.Equal(t, "315000", resp.Precio.String()) // 7 × 45000

	// El cálculo es vista previa: no toca stock ni crea nada
	assert.Equal(t, 10, materialRepo.materiales[m.ID].LaminasStock)
}

func TestCalcularRetiro_LaminasEnteras(t *testing.T) {
	svc, materialRepo, _, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Negro San Gabriel", 5)

	resp, err := svc.Calcular(context.Background(), dto.CalcularRetiroRequest{
		MaterialID:      m.ID.String(),
		Tipo:            model.RetiroLaminas,
		CantidadLaminas: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.LaminasNecesarias)
	assert.Zero(t, resp.SobroGenerado) // lámina entera: no hay corte ni retazo
	assert.Equal(t, "270000", resp.Costo.String())
	assert.Equal(t, "450000", resp.Precio.String()) // 3 × precio por lámina
}

func TestCalcularRetiro_MetrosLineales(t *testing.T) {
	svc, materialRepo, _, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Cuarzo Blanco Estelar", 4)

	// El consumo se rige por el área (2.0 × 0.6 = 1.2 m² → 1 lámina) pero el
	// precio por la suma de lados (2.6 ml).
	resp, err := svc.Calcular(context.Background(), dto.CalcularRetiroRequest{
		MaterialID: m.ID.String(),
		Tipo:       model.RetiroMetrosLineales,
		Largo:      2.0,
		Ancho:      0.6,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.LaminasNecesarias)
	assert.InDelta(t, 1.2, resp.AreaSolicitada, 1e-9)
	assert.InDelta(t, 3.92, resp.SobroGenerado, 1e-9) // 5.12 − 1.2
	assert.Equal(t, "91000", resp.Precio.String())    // 2.6 × 35000
	assert.Equal(t, "90000", resp.Costo.String())
}

func TestCalcularRetiro_PrecioPorSumaDeLados(t *testing.T) {
	svc, materialRepo, _, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Cuarzo Blanco Estelar", 4)

	// Dos encimeras con la misma suma de lados cuestan lo mismo, aunque
	// cubran áreas distintas: la tarifa lineal solo mira largo + ancho.
	angosta, err := svc.Calcular(context.Background(), dto.CalcularRetiroRequest{
		MaterialID: m.ID.String(),
		Tipo:       model.RetiroMetrosLineales,
		Largo:      2.0,
		Ancho:      0.6,
	})
	require.NoError(t, err)
	cuadrada, err := svc.Calcular(context.Background(), dto.CalcularRetiroRequest{
		MaterialID: m.ID.String(),
		Tipo:       model.RetiroMetrosLineales,
		Largo:      1.3,
		Ancho:      1.3,
	})
	require.NoError(t, err)

	assert.Equal(t, "91000", angosta.Precio.String()) // 2.6 ml × 35000
	assert.True(t, angosta.Precio.Equal(cuadrada.Precio))

	// El consumo sí cambia con la forma
	assert.InDelta(t, 1.2, angosta.AreaSolicitada, 1e-9)
	assert.InDelta(t, 1.69, cuadrada.AreaSolicitada, 1e-9)
}

func TestCalcularRetiro_EsIdempotente(t *testing.T) {
	svc, materialRepo, sobroRepo, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)
	seedSobro(sobroRepo, m.ID, 3.24)

	req := dto.CalcularRetiroRequest{
		MaterialID: m.ID.String(),
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       7.0,
		UsarSobros: true,
	}

	// La vista previa no muta nada: repetirla da exactamente lo mismo.
	primero, err := svc.Calcular(context.Background(), req)
	require.NoError(t, err)
	segundo, err := svc.Calcular(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, primero, segundo)

	assert.Equal(t, 10, materialRepo.materiales[m.ID].LaminasStock)
	require.Len(t, sobroRepo.sobros, 1)
}

func TestCalcularRetiro_SinResiduoPorAjusteExacto(t *testing.T) {
	svc, materialRepo, _, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 4)

	// 10.24 m² = exactamente 2 láminas: el residuo queda bajo el mínimo
	// registrable y se suprime.
	resp, err := svc.Calcular(context.Background(), dto.CalcularRetiroRequest{
		MaterialID: m.ID.String(),
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       10.24,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.LaminasNecesarias)
	assert.Zero(t, resp.SobroGenerado)
}

func TestCalcularRetiro_UsaSobrosDisponibles(t *testing.T) {
	svc, materialRepo, sobroRepo, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)
	seedSobro(sobroRepo, m.ID, 3.24)

	// 2 m² caben completos en el sobro: cero láminas nuevas
	resp, err := svc.Calcular(context.Background(), dto.CalcularRetiroRequest{
		MaterialID: m.ID.String(),
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       2.0,
		UsarSobros: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.LaminasNecesarias)
	assert.InDelta(t, 2.0, resp.AreaDeSobros, 1e-9)
	assert.Zero(t, resp.SobroGenerado)
	assert.True(t, resp.Costo.IsZero())
	// El precio se cobra completo aunque se sirva de sobros
	assert.Equal(t, "90000", resp.Precio.String()) // 2 × 45000
}

func TestCalcularRetiro_InventarioGrandeDeSobros(t *testing.T) {
	svc, materialRepo, sobroRepo, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)

	// Muchos fragmentos chicos: la vista previa debe sumar el inventario
	// completo, no una página, para coincidir con lo que hará Registrar.
	for i := 0; i < 201; i++ {
		seedSobro(sobroRepo, m.ID, 0.04)
	}

	req := dto.CalcularRetiroRequest{
		MaterialID: m.ID.String(),
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       8.02, // 201 × 0.04 = 8.04 m² disponibles
		UsarSobros: true,
	}
	resp, err := svc.Calcular(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.LaminasNecesarias)
	assert.InDelta(t, 8.02, resp.AreaDeSobros, 1e-9)

	// Y la confirmación llega a la misma conclusión
	confirmado, err := svc.Registrar(context.Background(), registrarReq(m.ID, req))
	require.NoError(t, err)
	assert.Equal(t, 0, confirmado.LaminasConsumidas)
	assert.Equal(t, 10, materialRepo.materiales[m.ID].LaminasStock)
}

func TestCalcularRetiro_StockInsuficiente(t *testing.T) {
	svc, materialRepo, _, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 1)

	_, err := svc.Calcular(context.Background(), dto.CalcularRetiroRequest{
		MaterialID: m.ID.String(),
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       7.0,
	})

	var stockErr *service.StockInsuficienteError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Requeridas)
	assert.Equal(t, 1, stockErr.Disponibles)
}

func TestCalcularRetiro_MaterialInactivo(t *testing.T) {
	svc, materialRepo, _, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)
	require.NoError(t, materialRepo.Desactivar(context.Background(), m.ID))

	_, err := svc.Calcular(context.Background(), dto.CalcularRetiroRequest{
		MaterialID: m.ID.String(),
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       1.0,
	})
	assert.ErrorIs(t, err, service.ErrMaterialInactivo)
}

func TestCalcularRetiro_AreaInvalida(t *testing.T) {
	svc, materialRepo, _, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)

	_, err := svc.Calcular(context.Background(), dto.CalcularRetiroRequest{
		MaterialID: m.ID.String(),
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       0,
	})
	assert.ErrorIs(t, err, service.ErrCantidadInvalida)
}

// ── Registro ─────────────────────────────────────────────────────────────────

func TestRegistrarRetiro_DescuentaStockYGeneraSobro(t *testing.T) {
	svc, materialRepo, sobroRepo, retiroRepo, movRepo := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)

	resp, err := svc.Registrar(context.Background(), registrarReq(m.ID, dto.CalcularRetiroRequest{
		Tipo: model.RetiroMetrosCuadrados,
		Area: 7.0,
	}))
	require.NoError(t, err)

	// Stock descontado
	assert.Equal(t, 8, materialRepo.materiales[m.ID].LaminasStock)

	// Retiro persistido con totales recalculados
	retiro, err := retiroRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, retiro.LaminasConsumidas)
	assert.Equal(t, "180000", retiro.CostoTotal.String())
	assert.Equal(t, "315000", retiro.PrecioCobrado.String())
	assert.Equal(t, "135000", retiro.Ganancia.String())
	require.NotNil(t, retiro.SobroGeneradoID)

	// El residuo del corte quedó como sobro enlazado a este retiro
	sobro, err := sobroRepo.FindByID(context.Background(), *retiro.SobroGeneradoID)
	require.NoError(t, err)
	assert.InDelta(t, 3.24, sobro.AreaMetrosCuadrados, 1e-9)
	require.NotNil(t, sobro.RetiroOrigenID)
	assert.Equal(t, retiro.ID, *sobro.RetiroOrigenID)
	assert.True(t, sobro.Usable)
	assert.False(t, sobro.Usado)

	// Bitácora: un movimiento de retiro con el antes y el después
	require.Len(t, movRepo.movimientos, 1)
	mov := movRepo.movimientos[0]
	assert.Equal(t, "retiro", mov.Tipo)
	assert.Equal(t, -2, mov.Laminas)
	assert.Equal(t, 10, mov.StockAnterior)
	assert.Equal(t, 8, mov.StockNuevo)
}

func TestRegistrarRetiro_ConsumoTotalDeSobro(t *testing.T) {
	svc, materialRepo, sobroRepo, _, movRepo := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)
	sb := seedSobro(sobroRepo, m.ID, 2.0)

	resp, err := svc.Registrar(context.Background(), registrarReq(m.ID, dto.CalcularRetiroRequest{
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       2.0,
		UsarSobros: true,
	}))
	require.NoError(t, err)
	assert.Equal(t, 0, resp.LaminasConsumidas)

	// Sin corte de láminas: stock intacto y sin movimiento en bitácora
	assert.Equal(t, 10, materialRepo.materiales[m.ID].LaminasStock)
	assert.Empty(t, movRepo.movimientos)

	// El sobro quedó consumido y enlazado al retiro que lo usó
	usado, err := sobroRepo.FindByID(context.Background(), sb.ID)
	require.NoError(t, err)
	assert.True(t, usado.Usado)
	require.NotNil(t, usado.ConsumidoPorRetiroID)
	assert.Equal(t, resp.ID, usado.ConsumidoPorRetiroID.String())
}

func TestRegistrarRetiro_ConsumoParcialDeSobro(t *testing.T) {
	svc, materialRepo, sobroRepo, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)
	sb := seedSobro(sobroRepo, m.ID, 3.24)

	resp, err := svc.Registrar(context.Background(), registrarReq(m.ID, dto.CalcularRetiroRequest{
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       2.0,
		UsarSobros: true,
	}))
	require.NoError(t, err)

	// El original queda consumido con el área realmente usada
	usado, err := sobroRepo.FindByID(context.Background(), sb.ID)
	require.NoError(t, err)
	assert.True(t, usado.Usado)
	assert.InDelta(t, 2.0, usado.AreaMetrosCuadrados, 1e-9)
	require.NotNil(t, usado.ConsumidoPorRetiroID)
	assert.Equal(t, resp.ID, usado.ConsumidoPorRetiroID.String())

	// El área que le sobró renace como sobro disponible
	disponibles, _, err := sobroRepo.List(context.Background(), dto.SobroFilter{MaterialID: m.ID.String()})
	require.NoError(t, err)
	require.Len(t, disponibles, 1)
	assert.InDelta(t, 1.24, disponibles[0].AreaMetrosCuadrados, 1e-9)

	assert.Equal(t, 10, materialRepo.materiales[m.ID].LaminasStock)
}

func TestRegistrarRetiro_ElMayorPrimero(t *testing.T) {
	svc, materialRepo, sobroRepo, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)
	chico := seedSobro(sobroRepo, m.ID, 0.8)
	grande := seedSobro(sobroRepo, m.ID, 3.0)

	_, err := svc.Registrar(context.Background(), registrarReq(m.ID, dto.CalcularRetiroRequest{
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       1.5,
		UsarSobros: true,
	}))
	require.NoError(t, err)

	// Se consume del mayor; el chico no se toca
	g, _ := sobroRepo.FindByID(context.Background(), grande.ID)
	assert.True(t, g.Usado)
	c, _ := sobroRepo.FindByID(context.Background(), chico.ID)
	assert.False(t, c.Usado)
}

func TestRegistrarRetiro_PrecioCobradoManual(t *testing.T) {
	svc, materialRepo, _, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)

	cobrado := decimal.NewFromInt(300000)
	req := registrarReq(m.ID, dto.CalcularRetiroRequest{
		Tipo: model.RetiroMetrosCuadrados,
		Area: 7.0,
	})
	req.PrecioCobrado = &cobrado

	resp, err := svc.Registrar(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "315000", resp.PrecioVentaTotal.String()) // el calculado se conserva
	assert.Equal(t, "300000", resp.PrecioCobrado.String())
	assert.Equal(t, "120000", resp.Ganancia.String()) // 300000 − 180000
}

func TestRegistrarRetiro_ProyectoRequerido(t *testing.T) {
	svc, materialRepo, _, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)

	req := registrarReq(m.ID, dto.CalcularRetiroRequest{Tipo: model.RetiroLaminas, CantidadLaminas: 1})
	req.Proyecto = ""

	_, err := svc.Registrar(context.Background(), req)
	var campoErr *service.CampoRequeridoError
	require.ErrorAs(t, err, &campoErr)
	assert.Equal(t, "proyecto", campoErr.Campo)
}

func TestRegistrarRetiro_UsuarioRequerido(t *testing.T) {
	svc, materialRepo, _, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)

	req := registrarReq(m.ID, dto.CalcularRetiroRequest{Tipo: model.RetiroLaminas, CantidadLaminas: 1})
	req.UsuarioID = ""

	_, err := svc.Registrar(context.Background(), req)
	var campoErr *service.CampoRequeridoError
	require.ErrorAs(t, err, &campoErr)
	assert.Equal(t, "usuario_id", campoErr.Campo)
}

func TestRegistrarRetiro_StockInsuficienteNoMuta(t *testing.T) {
	svc, materialRepo, sobroRepo, retiroRepo, movRepo := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 1)

	_, err := svc.Registrar(context.Background(), registrarReq(m.ID, dto.CalcularRetiroRequest{
		Tipo: model.RetiroMetrosCuadrados,
		Area: 7.0,
	}))

	var stockErr *service.StockInsuficienteError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, materialRepo.materiales[m.ID].LaminasStock)
	assert.Empty(t, retiroRepo.retiros)
	assert.Empty(t, sobroRepo.sobros)
	assert.Empty(t, movRepo.movimientos)
}

// ── Anulación ────────────────────────────────────────────────────────────────

func TestAnularRetiro_RevierteTodo(t *testing.T) {
	svc, materialRepo, sobroRepo, retiroRepo, movRepo := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)
	seedSobro(sobroRepo, m.ID, 3.0)

	// 7 m² con sobros: 3 m² del sobro, 4 m² de 1 lámina nueva (residuo 1.12)
	resp, err := svc.Registrar(context.Background(), registrarReq(m.ID, dto.CalcularRetiroRequest{
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       7.0,
		UsarSobros: true,
	}))
	require.NoError(t, err)
	require.Equal(t, 9, materialRepo.materiales[m.ID].LaminasStock)

	err = svc.Anular(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)

	// Stock repuesto y retiro eliminado
	assert.Equal(t, 10, materialRepo.materiales[m.ID].LaminasStock)
	_, err = retiroRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	assert.Error(t, err)

	// El sobro subproducto desapareció; el área consumida volvió como bolsa
	// general del material
	disponibles, _, err := sobroRepo.List(context.Background(), dto.SobroFilter{MaterialID: m.ID.String()})
	require.NoError(t, err)
	require.Len(t, disponibles, 1)
	assert.Equal(t, model.NotaSobroUnificado, disponibles[0].Notas)
	assert.InDelta(t, 3.0, disponibles[0].AreaMetrosCuadrados, 1e-9)

	// Bitácora: el retiro y su movimiento inverso
	require.Len(t, movRepo.movimientos, 2)
	assert.Equal(t, "retiro", movRepo.movimientos[0].Tipo)
	assert.Equal(t, -1, movRepo.movimientos[0].Laminas)
	assert.Equal(t, "anulacion_retiro", movRepo.movimientos[1].Tipo)
	assert.Equal(t, 1, movRepo.movimientos[1].Laminas)
	assert.Equal(t, 9, movRepo.movimientos[1].StockAnterior)
	assert.Equal(t, 10, movRepo.movimientos[1].StockNuevo)
}

func TestAnularRetiro_AcumulaEnBolsaExistente(t *testing.T) {
	svc, materialRepo, sobroRepo, _, _ := buildRetiroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)

	// Bolsa general previa de una anulación anterior
	bolsa := &model.Sobro{
		MaterialID:          m.ID,
		AreaMetrosCuadrados: 1.5,
		Usable:              true,
		Notas:               model.NotaSobroUnificado,
	}
	require.NoError(t, sobroRepo.Create(context.Background(), bolsa))
	sb := seedSobro(sobroRepo, m.ID, 2.0)

	// Consumir el sobro de 2.0 por completo (la bolsa de 1.5 cubre el resto
	// del área pedida: 3.5 en total)
	resp, err := svc.Registrar(context.Background(), registrarReq(m.ID, dto.CalcularRetiroRequest{
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       3.5,
		UsarSobros: true,
	}))
	require.NoError(t, err)

	require.NoError(t, svc.Anular(context.Background(), uuid.MustParse(resp.ID)))

	// Toda el área consumida regresó a una única bolsa general
	unificado, err := sobroRepo.FindUnificadoTx(nil, m.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, unificado.AreaMetrosCuadrados, 1e-9)

	// El sobro original consumido ya no existe como registro aparte
	_, err = sobroRepo.FindByID(context.Background(), sb.ID)
	assert.Error(t, err)
}

func TestAnularRetiro_FallaSiElMaterialNoSeLee(t *testing.T) {
	materialRepo := &stubMaterialRepoCaido{stubMaterialRepo: newStubMaterialRepo()}
	sobroRepo := newStubSobroRepo()
	retiroRepo := newStubRetiroRepo()
	movRepo := &stubMovimientoRepo{}
	svc := service.NewRetiroService(retiroRepo, materialRepo, sobroRepo, movRepo, service.GeometriaEstandar())

	m := seedMaterial(materialRepo.stubMaterialRepo, "Granito Gris Perla", 10)
	resp, err := svc.Registrar(context.Background(), registrarReq(m.ID, dto.CalcularRetiroRequest{
		Tipo: model.RetiroMetrosCuadrados,
		Area: 7.0,
	}))
	require.NoError(t, err)

	// Si el material no se puede leer, la anulación debe fallar completa en
	// vez de asentar una bitácora con stock inventado.
	materialRepo.caido = true
	err = svc.Anular(context.Background(), uuid.MustParse(resp.ID))
	require.Error(t, err)

	_, err = retiroRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	assert.NoError(t, err, "el retiro sigue vigente")
	require.Len(t, movRepo.movimientos, 1)
	assert.Equal(t, "retiro", movRepo.movimientos[0].Tipo)
}

func TestAnularRetiro_FallaSiLaBolsaNoSeLee(t *testing.T) {
	materialRepo := newStubMaterialRepo()
	sobroRepo := &stubSobroRepoCaido{stubSobroRepo: newStubSobroRepo()}
	retiroRepo := newStubRetiroRepo()
	movRepo := &stubMovimientoRepo{}
	svc := service.NewRetiroService(retiroRepo, materialRepo, sobroRepo, movRepo, service.GeometriaEstandar())

	m := seedMaterial(materialRepo, "Granito Gris Perla", 10)
	sb := seedSobro(sobroRepo.stubSobroRepo, m.ID, 2.0)
	resp, err := svc.Registrar(context.Background(), registrarReq(m.ID, dto.CalcularRetiroRequest{
		Tipo:       model.RetiroMetrosCuadrados,
		Area:       2.0,
		UsarSobros: true,
	}))
	require.NoError(t, err)

	// Un error real al buscar la bolsa general no es un "no existe": la
	// anulación debe fallar en vez de crear una bolsa duplicada.
	sobroRepo.caido = true
	err = svc.Anular(context.Background(), uuid.MustParse(resp.ID))
	require.Error(t, err)

	_, err = retiroRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	assert.NoError(t, err, "el retiro sigue vigente")
	_, err = sobroRepo.FindByID(context.Background(), sb.ID)
	assert.NoError(t, err, "el sobro consumido no se eliminó")
}

func TestAnularRetiro_NoEncontrado(t *testing.T) {
	svc, _, _, _, _ := buildRetiroSvc()
	err := svc.Anular(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrRetiroNoEncontrado)
}
