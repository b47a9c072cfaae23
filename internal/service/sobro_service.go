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

// SobroService maneja las operaciones manuales sobre retazos. El ciclo de
// vida automático (generación y consumo) es responsabilidad del RetiroService.
type SobroService interface {
	Crear(ctx context.Context, req dto.CrearSobroRequest) (*dto.SobroResponse, error)
	Listar(ctx context.Context, filter dto.SobroFilter) (*dto.SobroListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSobroRequest) (*dto.SobroResponse, error)
}

type sobroService struct {
	repo         repository.SobroRepository
	materialRepo repository.MaterialRepository
}

func NewSobroService(repo repository.SobroRepository, materialRepo repository.MaterialRepository) SobroService {
	return &sobroService{repo: repo, materialRepo: materialRepo}
}

func (s *sobroService) Crear(ctx context.Context, req dto.CrearSobroRequest) (*dto.SobroResponse, error) {
	if req.AreaMetrosCuadrados <= areaMinimaSobro {
		return nil, ErrCantidadInvalida
	}
	materialID, err := uuid.Parse(req.MaterialID)
	if err != nil {
		return nil, fmt.Errorf("material_id inválido: %w", err)
	}
	if _, err := s.materialRepo.FindByID(ctx, materialID); err != nil {
		return nil, errors.New("material no encontrado")
	}

	sb := model.Sobro{
		MaterialID:          materialID,
		AreaMetrosCuadrados: req.AreaMetrosCuadrados,
		Usable:              true,
		ProyectoOrigen:      req.ProyectoOrigen,
		Notas:               req.Notas,
	}
	if err := s.repo.Create(ctx, &sb); err != nil {
		return nil, err
	}
	return sobroToResponse(&sb), nil
}

func (s *sobroService) Listar(ctx context.Context, filter dto.SobroFilter) (*dto.SobroListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sobros, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SobroResponse, 0, len(sobros))
	areaTotal := 0.0
	for i := range sobros {
		items = append(items, *sobroToResponse(&sobros[i]))
		if sobros[i].Usable && !sobros[i].Usado {
			areaTotal += sobros[i].AreaMetrosCuadrados
		}
	}
	return &dto.SobroListResponse{
		Data:      items,
		AreaTotal: areaTotal,
		Total:     total,
		Page:      filter.Page,
		Limit:     filter.Limit,
	}, nil
}

// Actualizar cambia la marca de usable (retazo → desecho y viceversa) o las
// notas. Un sobro ya usado no se puede tocar: su historia pertenece al retiro
// que lo consumió.
func (s *sobroService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSobroRequest) (*dto.SobroResponse, error) {
	sb, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("sobro no encontrado")
	}
	if sb.Usado {
		return nil, errors.New("el sobro ya fue usado y no puede modificarse")
	}
	if req.Usable != nil {
		sb.Usable = *req.Usable
	}
	if req.Notas != nil {
		sb.Notas = *req.Notas
	}
	if err := s.repo.Update(ctx, sb); err != nil {
		return nil, err
	}
	return sobroToResponse(sb), nil
}

func sobroToResponse(sb *model.Sobro) *dto.SobroResponse {
	resp := &dto.SobroResponse{
		ID:                  sb.ID.String(),
		MaterialID:          sb.MaterialID.String(),
		AreaMetrosCuadrados: sb.AreaMetrosCuadrados,
		Usable:              sb.Usable,
		Usado:               sb.Usado,
		ProyectoOrigen:      sb.ProyectoOrigen,
		Notas:               sb.Notas,
	}
	if sb.Material != nil {
		resp.Material = sb.Material.Nombre
	}
	if sb.RetiroOrigenID != nil {
		id := sb.RetiroOrigenID.String()
		resp.RetiroOrigenID = &id
	}
	if sb.ConsumidoPorRetiroID != nil {
		id := sb.ConsumidoPorRetiroID.String()
		resp.ConsumidoPorRetiroID = &id
	}
	return resp
}
