package service

// Reportes de inventario en Excel: una hoja con el stock de láminas por
// material y otra con los sobros disponibles. El archivo se arma en memoria
// y el handler lo sirve como descarga.

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"granimar/internal/dto"
	"granimar/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type ReporteService interface {
	InventarioExcel(ctx context.Context) (*bytes.Buffer, string, error)
}

type reporteService struct {
	materialRepo repository.MaterialRepository
	sobroRepo    repository.SobroRepository
}

func NewReporteService(materialRepo repository.MaterialRepository, sobroRepo repository.SobroRepository) ReporteService {
	return &reporteService{materialRepo: materialRepo, sobroRepo: sobroRepo}
}

// InventarioExcel genera el libro con las hojas "Materiales" y "Sobros".
// Devuelve el buffer y el nombre de archivo sugerido.
func (s *reporteService) InventarioExcel(ctx context.Context) (*bytes.Buffer, string, error) {
	materiales, _, err := s.materialRepo.List(ctx, dto.MaterialFilter{Page: 1, Limit: 1000})
	if err != nil {
		return nil, "", fmt.Errorf("listando materiales: %w", err)
	}
	sobros, _, err := s.sobroRepo.List(ctx, dto.SobroFilter{Estado: "disponibles", Page: 1, Limit: 1000})
	if err != nil {
		return nil, "", fmt.Errorf("listando sobros: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, "Materiales"); err != nil {
		return nil, "", err
	}

	header := []interface{}{
		"Material",
		"Color",
		"Láminas en stock",
		"Stock mínimo",
		"Costo por lámina",
		"Precio venta por lámina",
		"Precio m²",
		"Precio metro lineal",
		"Valor en bodega",
		"Activo",
	}
	if err := f.SetSheetRow("Materiales", "A1", &header); err != nil {
		return nil, "", err
	}

	row := 2
	for _, m := range materiales {
		color := ""
		if m.Color != nil {
			color = *m.Color
		}
		excelRow := []interface{}{
			m.Nombre,
			color,
			m.LaminasStock,
			m.StockMinimo,
			m.CostoPorLamina.InexactFloat64(),
			m.PrecioVentaPorLamina.InexactFloat64(),
			m.PrecioPorMetroCuadrado.InexactFloat64(),
			m.PrecioPorMetroLineal.InexactFloat64(),
			m.CostoPorLamina.Mul(decimal.NewFromInt(int64(m.LaminasStock))).InexactFloat64(),
			m.Activo,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow("Materiales", cell, &excelRow); err != nil {
			return nil, "", err
		}
		row++
	}

	if _, err := f.NewSheet("Sobros"); err != nil {
		return nil, "", err
	}
	sobroHeader := []interface{}{
		"Material",
		"Área (m²)",
		"Proyecto de origen",
		"Notas",
		"Fecha",
	}
	if err := f.SetSheetRow("Sobros", "A1", &sobroHeader); err != nil {
		return nil, "", err
	}

	row = 2
	for _, sb := range sobros {
		materialNombre := ""
		if sb.Material != nil {
			materialNombre = sb.Material.Nombre
		}
		excelRow := []interface{}{
			materialNombre,
			sb.AreaMetrosCuadrados,
			sb.ProyectoOrigen,
			sb.Notas,
			sb.CreatedAt.Format("2006-01-02"),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow("Sobros", cell, &excelRow); err != nil {
			return nil, "", err
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("escribiendo excel: %w", err)
	}

	nombre := fmt.Sprintf("inventario_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf, nombre, nil
}
