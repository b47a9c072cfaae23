package tests

import (
	"context"
	"testing"

	"granimar/internal/dto"
	"granimar/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSobroSvc() (service.SobroService, *stubMaterialRepo, *stubSobroRepo) {
	materialRepo := newStubMaterialRepo()
	sobroRepo := newStubSobroRepo()
	return service.NewSobroService(sobroRepo, materialRepo), materialRepo, sobroRepo
}

func TestCrearSobroManual(t *testing.T) {
	svc, materialRepo, sobroRepo := buildSobroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 5)

	resp, err := svc.Crear(context.Background(), dto.CrearSobroRequest{
		MaterialID:          m.ID.String(),
		AreaMetrosCuadrados: 1.8,
		ProyectoOrigen:      "inventario inicial",
	})
	require.NoError(t, err)
	assert.True(t, resp.Usable)
	assert.False(t, resp.Usado)

	stored := sobroRepo.sobros[uuid.MustParse(resp.ID)]
	require.NotNil(t, stored)
	assert.InDelta(t, 1.8, stored.AreaMetrosCuadrados, 1e-9)
	assert.Nil(t, stored.RetiroOrigenID) // registro manual, sin retiro de origen
}

func TestCrearSobro_AreaMuyPequena(t *testing.T) {
	svc, materialRepo, _ := buildSobroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 5)

	_, err := svc.Crear(context.Background(), dto.CrearSobroRequest{
		MaterialID:          m.ID.String(),
		AreaMetrosCuadrados: 0.005,
	})
	assert.ErrorIs(t, err, service.ErrCantidadInvalida)
}

func TestCrearSobro_MaterialInexistente(t *testing.T) {
	svc, _, _ := buildSobroSvc()
	_, err := svc.Crear(context.Background(), dto.CrearSobroRequest{
		MaterialID:          uuid.New().String(),
		AreaMetrosCuadrados: 1.0,
	})
	assert.ErrorContains(t, err, "material no encontrado")
}

func TestListarSobros_SumaAreaDisponible(t *testing.T) {
	svc, materialRepo, sobroRepo := buildSobroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 5)
	seedSobro(sobroRepo, m.ID, 3.24)
	seedSobro(sobroRepo, m.ID, 1.5)

	resp, err := svc.Listar(context.Background(), dto.SobroFilter{MaterialID: m.ID.String()})
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.InDelta(t, 4.74, resp.AreaTotal, 1e-9)
	// Ordenados por área descendente: el mayor primero
	assert.InDelta(t, 3.24, resp.Data[0].AreaMetrosCuadrados, 1e-9)
}

func TestActualizarSobro_MarcarComoDesecho(t *testing.T) {
	svc, materialRepo, sobroRepo := buildSobroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 5)
	sb := seedSobro(sobroRepo, m.ID, 0.4)

	usable := false
	notas := "quebrado en bodega"
	resp, err := svc.Actualizar(context.Background(), sb.ID, dto.ActualizarSobroRequest{
		Usable: &usable,
		Notas:  &notas,
	})
	require.NoError(t, err)
	assert.False(t, resp.Usable)
	assert.Equal(t, "quebrado en bodega", resp.Notas)

	// Un desecho ya no aparece entre los disponibles
	disponibles, _, err := sobroRepo.List(context.Background(), dto.SobroFilter{MaterialID: m.ID.String()})
	require.NoError(t, err)
	assert.Empty(t, disponibles)
}

func TestActualizarSobro_UsadoEsInmutable(t *testing.T) {
	svc, materialRepo, sobroRepo := buildSobroSvc()
	m := seedMaterial(materialRepo, "Granito Gris Perla", 5)
	sb := seedSobro(sobroRepo, m.ID, 2.0)
	sobroRepo.sobros[sb.ID].Usado = true

	usable := false
	_, err := svc.Actualizar(context.Background(), sb.ID, dto.ActualizarSobroRequest{Usable: &usable})
	assert.ErrorContains(t, err, "ya fue usado")
}
