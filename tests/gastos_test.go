package tests

import (
	"context"
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

type stubGastoRepo struct {
	gastos map[uuid.UUID]*model.Gasto
}

func newStubGastoRepo() *stubGastoRepo {
	return &stubGastoRepo{gastos: make(map[uuid.UUID]*model.Gasto)}
}

func (r *stubGastoRepo) Create(_ context.Context, g *model.Gasto) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	cp := *g
	r.gastos[g.ID] = &cp
	return nil
}

func (r *stubGastoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Gasto, error) {
	g, ok := r.gastos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *stubGastoRepo) List(_ context.Context, filter dto.GastoFilter) ([]model.Gasto, int64, error) {
	var out []model.Gasto
	for _, g := range r.gastos {
		if filter.Categoria != "" && g.Categoria != filter.Categoria {
			continue
		}
		out = append(out, *g)
	}
	return out, int64(len(out)), nil
}

func (r *stubGastoRepo) ListPorMes(_ context.Context, desde, hasta time.Time) ([]model.Gasto, error) {
	var out []model.Gasto
	for _, g := range r.gastos {
		if !g.Fecha.Before(desde) && g.Fecha.Before(hasta) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *stubGastoRepo) Update(_ context.Context, g *model.Gasto) error {
	cp := *g
	r.gastos[g.ID] = &cp
	return nil
}

func (r *stubGastoRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.gastos, id)
	return nil
}

var _ repository.GastoRepository = (*stubGastoRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func buildGastoSvc() (service.GastoService, *stubGastoRepo, *stubRetiroRepo) {
	gastoRepo := newStubGastoRepo()
	retiroRepo := newStubRetiroRepo()
	return service.NewGastoService(gastoRepo, retiroRepo), gastoRepo, retiroRepo
}

func seedGasto(t *testing.T, svc service.GastoService, categoria string, monto int64, fijo bool, fecha string) *dto.GastoResponse {
	t.Helper()
	resp, err := svc.Crear(context.Background(), dto.CrearGastoRequest{
		Categoria:   categoria,
		Descripcion: categoria + " del mes",
		Monto:       decimal.NewFromInt(monto),
		Fijo:        fijo,
		Fecha:       fecha,
	})
	require.NoError(t, err)
	return resp
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCrearGasto_MontoInvalido(t *testing.T) {
	svc, _, _ := buildGastoSvc()
	_, err := svc.Crear(context.Background(), dto.CrearGastoRequest{
		Categoria:   "alquiler",
		Descripcion: "alquiler del local",
		Monto:       decimal.Zero,
	})
	assert.ErrorIs(t, err, service.ErrCantidadInvalida)
}

func TestCrearGasto_FechaInvalida(t *testing.T) {
	svc, _, _ := buildGastoSvc()
	_, err := svc.Crear(context.Background(), dto.CrearGastoRequest{
		Categoria:   "alquiler",
		Descripcion: "alquiler del local",
		Monto:       decimal.NewFromInt(350000),
		Fecha:       "15/08/2026",
	})
	assert.ErrorContains(t, err, "fecha inválida")
}

func TestProrratearCostosFijos(t *testing.T) {
	// 500000 fijos entre 12 láminas = 41666.67 por lámina
	costo := service.ProrratearCostosFijos(decimal.NewFromInt(500000), 12)
	assert.Equal(t, "41666.67", costo.String())
}

func TestProrratearCostosFijos_SinConsumo(t *testing.T) {
	costo := service.ProrratearCostosFijos(decimal.NewFromInt(500000), 0)
	assert.True(t, costo.IsZero())
}

func TestResumenMensual(t *testing.T) {
	svc, _, retiroRepo := buildGastoSvc()

	seedGasto(t, svc, "alquiler", 350000, true, "2026-08-01")
	seedGasto(t, svc, "electricidad", 80000, true, "2026-08-10")
	seedGasto(t, svc, "discos de corte", 45000, false, "2026-08-15")
	// Fuera del mes consultado
	seedGasto(t, svc, "alquiler", 350000, true, "2026-07-01")

	// 10 láminas consumidas en agosto
	fecha, _ := time.Parse("2006-01-02", "2026-08-20")
	require.NoError(t, retiroRepo.CreateTx(nil, &model.Retiro{
		MaterialID:        uuid.New(),
		Tipo:              model.RetiroLaminas,
		LaminasConsumidas: 10,
		Proyecto:          "Cocina Familia Rojas",
		UsuarioID:         uuid.New(),
		Fecha:             fecha,
	}))

	resumen, err := svc.ResumenMensual(context.Background(), "2026-08")
	require.NoError(t, err)
	assert.Equal(t, "430000", resumen.TotalFijos.String())
	assert.Equal(t, "45000", resumen.TotalVariables.String())
	assert.Equal(t, "475000", resumen.Total.String())
	assert.Equal(t, 10, resumen.LaminasConsumidas)
	assert.Equal(t, "43000", resumen.CostoFijoPorLamina.String())
	assert.Equal(t, "350000", resumen.PorCategoria["alquiler"].String())
	assert.Equal(t, "80000", resumen.PorCategoria["electricidad"].String())
}

func TestResumenMensual_MesInvalido(t *testing.T) {
	svc, _, _ := buildGastoSvc()
	_, err := svc.ResumenMensual(context.Background(), "agosto")
	assert.ErrorContains(t, err, "mes inválido")
}

func TestActualizarGasto(t *testing.T) {
	svc, repo, _ := buildGastoSvc()
	g := seedGasto(t, svc, "alquiler", 350000, true, "2026-08-01")

	nuevoMonto := decimal.NewFromInt(380000)
	resp, err := svc.Actualizar(context.Background(), uuid.MustParse(g.ID), dto.ActualizarGastoRequest{
		Monto: &nuevoMonto,
	})
	require.NoError(t, err)
	assert.Equal(t, "380000", resp.Monto.String())
	assert.Equal(t, "alquiler", resp.Categoria)
	assert.Equal(t, "380000", repo.gastos[uuid.MustParse(g.ID)].Monto.String())
}

func TestEliminarGasto(t *testing.T) {
	svc, repo, _ := buildGastoSvc()
	g := seedGasto(t, svc, "alquiler", 350000, true, "2026-08-01")

	require.NoError(t, svc.Eliminar(context.Background(), uuid.MustParse(g.ID)))
	assert.Empty(t, repo.gastos)
}
