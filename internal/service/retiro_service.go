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
	"gorm.io/gorm"
)

// RetiroService es el núcleo del sistema: calcula retiros de material,
// los confirma con todos sus efectos (stock, sobros, bitácora) en una sola
// transacción, y los anula revirtiendo todo.
type RetiroService interface {
	// Calcular es la vista previa pura: no muta nada.
	Calcular(ctx context.Context, req dto.CalcularRetiroRequest) (*dto.CalculoRetiroResponse, error)
	Registrar(ctx context.Context, req dto.RegistrarRetiroRequest) (*dto.RetiroResponse, error)
	Anular(ctx context.Context, id uuid.UUID) error
	Listar(ctx context.Context, filter dto.RetiroFilter) (*dto.RetiroListResponse, error)
}

type retiroService struct {
	repo         repository.RetiroRepository
	materialRepo repository.MaterialRepository
	sobroRepo    repository.SobroRepository
	movRepo      repository.MovimientoMaterialRepository
	geo          Geometria
}

func NewRetiroService(
	repo repository.RetiroRepository,
	materialRepo repository.MaterialRepository,
	sobroRepo repository.SobroRepository,
	movRepo repository.MovimientoMaterialRepository,
	geo Geometria,
) RetiroService {
	return &retiroService{
		repo:         repo,
		materialRepo: materialRepo,
		sobroRepo:    sobroRepo,
		movRepo:      movRepo,
		geo:          geo,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Calcular ──────────────────────────────────────────────────────────────────

func (s *retiroService) Calcular(ctx context.Context, req dto.CalcularRetiroRequest) (*dto.CalculoRetiroResponse, error) {
	materialID, err := uuid.Parse(req.MaterialID)
	if err != nil {
		return nil, fmt.Errorf("material_id inválido: %w", err)
	}
	m, err := s.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("material %s no encontrado", req.MaterialID)
	}
	if !m.Activo {
		return nil, ErrMaterialInactivo
	}

	areaSobros := 0.0
	if req.UsarSobros && req.Tipo != model.RetiroLaminas {
		// Suma agregada, sin paginar: la vista previa debe ver la misma área
		// disponible que luego verá la transacción de Registrar.
		areaSobros, err = s.sobroRepo.SumAreaDisponible(ctx, materialID)
		if err != nil {
			return nil, err
		}
	}

	calc, err := s.calcular(m, req, areaSobros)
	if err != nil {
		return nil, err
	}
	if calc.LaminasNecesarias > m.LaminasStock {
		return nil, &StockInsuficienteError{Requeridas: calc.LaminasNecesarias, Disponibles: m.LaminasStock}
	}

	return &dto.CalculoRetiroResponse{
		LaminasNecesarias: calc.LaminasNecesarias,
		Costo:             calc.Costo,
		Precio:            calc.Precio,
		AreaDeSobros:      calc.AreaDeSobros,
		SobroGenerado:     calc.SobroGenerado,
		AreaSolicitada:    calc.AreaSolicitada,
	}, nil
}

func (s *retiroService) calcular(m *model.Material, req dto.CalcularRetiroRequest, areaSobros float64) (*CalculoRetiro, error) {
	switch req.Tipo {
	case model.RetiroLaminas:
		return calcularRetiroLaminas(m, req.CantidadLaminas)
	case model.RetiroMetrosCuadrados:
		return calcularRetiroMetrosCuadrados(m, s.geo, req.Area, areaSobros)
	case model.RetiroMetrosLineales:
		return calcularRetiroMetrosLineales(m, s.geo, req.Largo, req.Ancho, areaSobros)
	default:
		return nil, fmt.Errorf("tipo de retiro desconocido: %q", req.Tipo)
	}
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// Confirma un retiro en una sola transacción ACID:
//  1. Validaciones (antes de cualquier mutación)
//  2. BEGIN TX: descontar stock, consumir sobros (mayor primero), crear el
//     retiro, crear el sobro subproducto, registrar el movimiento de stock
//  3. COMMIT — o rollback completo si cualquier paso falla
//
// Todos los totales se recalculan aquí: nunca se persisten cifras enviadas
// por el cliente, salvo el precio cobrado que el operador puede ajustar.

func (s *retiroService) Registrar(ctx context.Context, req dto.RegistrarRetiroRequest) (*dto.RetiroResponse, error) {
	if req.Proyecto == "" {
		return nil, &CampoRequeridoError{Campo: "proyecto"}
	}
	if req.UsuarioID == "" {
		return nil, &CampoRequeridoError{Campo: "usuario_id"}
	}
	usuarioID, err := uuid.Parse(req.UsuarioID)
	if err != nil {
		return nil, fmt.Errorf("usuario_id inválido: %w", err)
	}
	materialID, err := uuid.Parse(req.MaterialID)
	if err != nil {
		return nil, fmt.Errorf("material_id inválido: %w", err)
	}

	var retiro model.Retiro
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		m, err := s.findMaterial(ctx, tx, materialID)
		if err != nil {
			return fmt.Errorf("material %s no encontrado", req.MaterialID)
		}
		if !m.Activo {
			return ErrMaterialInactivo
		}

		// Sobros disponibles se leen dentro de la transacción: el cálculo de
		// la vista previa pudo quedar obsoleto si otro retiro consumió sobros
		// entre tanto.
		var disponibles []model.Sobro
		areaSobros := 0.0
		if req.UsarSobros && req.Tipo != model.RetiroLaminas {
			disponibles, err = s.listSobrosDisponibles(ctx, tx, materialID)
			if err != nil {
				return err
			}
			for _, sb := range disponibles {
				areaSobros += sb.AreaMetrosCuadrados
			}
		}

		calc, err := s.calcular(m, req.CalcularRetiroRequest, areaSobros)
		if err != nil {
			return err
		}
		if calc.LaminasNecesarias > m.LaminasStock {
			return &StockInsuficienteError{Requeridas: calc.LaminasNecesarias, Disponibles: m.LaminasStock}
		}

		precioCobrado := calc.Precio
		if req.PrecioCobrado != nil {
			precioCobrado = *req.PrecioCobrado
		}

		// 1. Descontar stock
		if calc.LaminasNecesarias > 0 {
			if err := s.materialRepo.DescontarStockTx(tx, materialID, calc.LaminasNecesarias); err != nil {
				return fmt.Errorf("error descontando stock de %s: %w", m.Nombre, err)
			}
		}

		// 2. Crear el retiro (los sobros consumidos y el subproducto lo
		//    referencian por FK)
		retiro = model.Retiro{
			MaterialID:        materialID,
			Tipo:              req.Tipo,
			CantidadLaminas:   req.CantidadLaminas,
			Largo:             req.Largo,
			Ancho:             req.Ancho,
			AreaSolicitada:    calc.AreaSolicitada,
			LaminasConsumidas: calc.LaminasNecesarias,
			UsoSobros:         calc.AreaDeSobros > 0,
			AreaDeSobros:      calc.AreaDeSobros,
			CostoTotal:        calc.Costo,
			PrecioVentaTotal:  calc.Precio,
			PrecioCobrado:     precioCobrado,
			Ganancia:          precioCobrado.Sub(calc.Costo),
			Proyecto:          req.Proyecto,
			Cliente:           req.Cliente,
			UsuarioID:         usuarioID,
			Fecha:             time.Now(),
		}
		if err := s.repo.CreateTx(tx, &retiro); err != nil {
			return err
		}

		// 3. Consumir sobros, el de mayor área primero
		if calc.AreaDeSobros > 0 {
			if err := s.consumirSobros(tx, &retiro, disponibles, calc.AreaDeSobros); err != nil {
				return err
			}
		}

		// 4. Sobro subproducto del corte
		if calc.SobroGenerado > 0 {
			generado := model.Sobro{
				MaterialID:          materialID,
				AreaMetrosCuadrados: calc.SobroGenerado,
				Usable:              true,
				RetiroOrigenID:      &retiro.ID,
				ProyectoOrigen:      req.Proyecto,
			}
			if err := s.sobroRepo.CreateTx(tx, &generado); err != nil {
				return err
			}
			retiro.SobroGeneradoID = &generado.ID
			if err := s.repo.UpdateTx(tx, &retiro); err != nil {
				return err
			}
		}

		// 5. Bitácora de stock
		if calc.LaminasNecesarias > 0 {
			ref := retiro.ID
			mov := &model.MovimientoMaterial{
				MaterialID:    materialID,
				Tipo:          "retiro",
				Laminas:       -calc.LaminasNecesarias,
				StockAnterior: m.LaminasStock,
				StockNuevo:    m.LaminasStock - calc.LaminasNecesarias,
				Motivo:        fmt.Sprintf("Retiro para proyecto %s", req.Proyecto),
				ReferenciaID:  &ref,
			}
			if err := s.movRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return retiroToResponse(&retiro), nil
}

// consumirSobros recorre los sobros disponibles (ya ordenados por área
// descendente) hasta agotar areaNecesaria. Consumo total: usado=true.
// Consumo parcial: el original se marca usado y el área que le sobró se
// inserta como sobro nuevo.
func (s *retiroService) consumirSobros(tx *gorm.DB, retiro *model.Retiro, disponibles []model.Sobro, areaNecesaria float64) error {
	restante := areaNecesaria
	for i := range disponibles {
		if restante <= 0 {
			break
		}
		sb := disponibles[i]
		sb.Usado = true
		sb.ConsumidoPorRetiroID = &retiro.ID

		if sb.AreaMetrosCuadrados <= restante {
			// Consumo total
			sb.Notas = fmt.Sprintf("usado completo en proyecto %s", retiro.Proyecto)
			restante -= sb.AreaMetrosCuadrados
			if err := s.sobroRepo.UpdateTx(tx, &sb); err != nil {
				return err
			}
			continue
		}

		// Consumo parcial: partir el sobro
		resto := sb.AreaMetrosCuadrados - restante
		sb.AreaMetrosCuadrados = restante
		sb.Notas = fmt.Sprintf("usado parcialmente en proyecto %s", retiro.Proyecto)
		if err := s.sobroRepo.UpdateTx(tx, &sb); err != nil {
			return err
		}
		restante = 0

		remanente := model.Sobro{
			MaterialID:          sb.MaterialID,
			AreaMetrosCuadrados: resto,
			Usable:              true,
			ProyectoOrigen:      sb.ProyectoOrigen,
			Notas:               "restante de sobro original",
		}
		if err := s.sobroRepo.CreateTx(tx, &remanente); err != nil {
			return err
		}
	}
	return nil
}

// ── Anular ────────────────────────────────────────────────────────────────────
// Deshace un retiro confirmado, también en una sola transacción:
//  1. Reponer las láminas consumidas al stock
//  2. Eliminar los sobros que este retiro generó como subproducto
//  3. Devolver el área que consumió de sobros a la bolsa general del material
//  4. Eliminar el retiro y registrar el movimiento inverso
//
// La bolsa general pierde la procedencia del área devuelta (qué retiro la
// produjo originalmente); comportamiento heredado del diseño de negocio.

func (s *retiroService) Anular(ctx context.Context, id uuid.UUID) error {
	retiro, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrRetiroNoEncontrado
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// 1. Reponer stock
		if retiro.LaminasConsumidas > 0 {
			if err := s.materialRepo.ReponerStockTx(tx, retiro.MaterialID, retiro.LaminasConsumidas); err != nil {
				return err
			}

			m, err := s.findMaterial(ctx, tx, retiro.MaterialID)
			if err != nil {
				return fmt.Errorf("material del retiro no disponible: %w", err)
			}
			stockAntes := m.LaminasStock - retiro.LaminasConsumidas
			ref := retiro.ID
			mov := &model.MovimientoMaterial{
				MaterialID:    retiro.MaterialID,
				Tipo:          "anulacion_retiro",
				Laminas:       retiro.LaminasConsumidas,
				StockAnterior: stockAntes,
				StockNuevo:    stockAntes + retiro.LaminasConsumidas,
				Motivo:        fmt.Sprintf("Anulación de retiro del proyecto %s", retiro.Proyecto),
				ReferenciaID:  &ref,
			}
			if err := s.movRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		// 2. Borrar sobros subproducto de este retiro
		if err := s.sobroRepo.DeleteByRetiroOrigenTx(tx, retiro.ID); err != nil {
			return err
		}

		// 3. Reagrupar el área consumida de sobros en la bolsa general
		if retiro.UsoSobros {
			consumidos, err := s.sobroRepo.ListConsumidosPorRetiroTx(tx, retiro.ID)
			if err != nil {
				return err
			}
			for i := range consumidos {
				if err := s.devolverABolsaGeneral(tx, &consumidos[i]); err != nil {
					return err
				}
			}
		}

		// 4. Eliminar el retiro
		return s.repo.DeleteTx(tx, retiro.ID)
	})
}

// devolverABolsaGeneral suma el área del sobro consumido a la bolsa general
// del material (creándola si no existe) y elimina el registro consumido, que
// ya no aporta nada.
func (s *retiroService) devolverABolsaGeneral(tx *gorm.DB, consumido *model.Sobro) error {
	bolsa, err := s.sobroRepo.FindUnificadoTx(tx, consumido.MaterialID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		bolsa = &model.Sobro{
			MaterialID: consumido.MaterialID,
			Usable:     true,
			Notas:      model.NotaSobroUnificado,
		}
	}
	bolsa.AreaMetrosCuadrados += consumido.AreaMetrosCuadrados
	if bolsa.ID == uuid.Nil {
		if err := s.sobroRepo.CreateTx(tx, bolsa); err != nil {
			return err
		}
	} else if err := s.sobroRepo.UpdateTx(tx, bolsa); err != nil {
		return err
	}
	return s.sobroRepo.DeleteTx(tx, consumido.ID)
}

// ── Listar ────────────────────────────────────────────────────────────────────

func (s *retiroService) Listar(ctx context.Context, filter dto.RetiroFilter) (*dto.RetiroListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	retiros, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RetiroResponse, 0, len(retiros))
	for i := range retiros {
		items = append(items, *retiroToResponse(&retiros[i]))
	}
	return &dto.RetiroListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// findMaterial usa la variante Tx cuando hay transacción y la variante con
// contexto cuando no (modo unit test con tx nil).
func (s *retiroService) findMaterial(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Material, error) {
	if tx == nil {
		return s.materialRepo.FindByID(ctx, id)
	}
	return s.materialRepo.FindByIDTx(tx, id)
}

func (s *retiroService) listSobrosDisponibles(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) ([]model.Sobro, error) {
	if tx == nil {
		return s.sobroRepo.ListDisponibles(ctx, materialID)
	}
	return s.sobroRepo.ListDisponiblesTx(tx, materialID)
}

func retiroToResponse(r *model.Retiro) *dto.RetiroResponse {
	resp := &dto.RetiroResponse{
		ID:                r.ID.String(),
		MaterialID:        r.MaterialID.String(),
		Tipo:              r.Tipo,
		CantidadLaminas:   r.CantidadLaminas,
		Largo:             r.Largo,
		Ancho:             r.Ancho,
		AreaSolicitada:    r.AreaSolicitada,
		LaminasConsumidas: r.LaminasConsumidas,
		UsoSobros:         r.UsoSobros,
		AreaDeSobros:      r.AreaDeSobros,
		CostoTotal:        r.CostoTotal,
		PrecioVentaTotal:  r.PrecioVentaTotal,
		PrecioCobrado:     r.PrecioCobrado,
		Ganancia:          r.Ganancia,
		Proyecto:          r.Proyecto,
		Cliente:           r.Cliente,
		UsuarioID:         r.UsuarioID.String(),
		Fecha:             r.Fecha.Format("2006-01-02T15:04:05Z"),
	}
	if r.Material != nil {
		resp.Material = r.Material.Nombre
	}
	if r.SobroGeneradoID != nil {
		id := r.SobroGeneradoID.String()
		resp.SobroGeneradoID = &id
	}
	return resp
}
