package service

import (
	"math"

	"granimar/internal/model"

	"github.com/shopspring/decimal"
)

// Geometria describe la lámina estándar del taller. Es un valor único
// inyectado en el servicio de retiros — nunca un número mágico repetido por
// cada llamador.
type Geometria struct {
	LargoLamina float64 // m
	AnchoLamina float64 // m
	// AreaPorLamina es el área útil de una lámina entera.
	AreaPorLamina float64 // m²
	// MetrosLinealesPorLamina asume al menos dos cortes por lámina.
	MetrosLinealesPorLamina float64 // ml
}

// GeometriaEstandar devuelve la lámina de 3.22 × 1.59 que maneja el taller.
func GeometriaEstandar() Geometria {
	return Geometria{
		LargoLamina:             3.22,
		AnchoLamina:             1.59,
		AreaPorLamina:           5.12,
		MetrosLinealesPorLamina: 6.44,
	}
}

// areaMinimaSobro: por debajo de esto el residuo es ruido de punto flotante,
// no un retazo registrable.
const areaMinimaSobro = 0.01

// CalculoRetiro es el resultado determinista del calculador. Función pura:
// mismos insumos, mismo resultado, sin estado oculto.
type CalculoRetiro struct {
	LaminasNecesarias int
	Costo             decimal.Decimal
	Precio            decimal.Decimal
	// AreaDeSobros: m² servidos desde sobros existentes.
	AreaDeSobros float64
	// SobroGenerado: m² sin usar de las láminas cortadas que quedarán como
	// retazo nuevo (0 si no supera areaMinimaSobro).
	SobroGenerado  float64
	AreaSolicitada float64
}

// calcularRetiroLaminas: láminas enteras, sin corte — no se genera sobro.
func calcularRetiroLaminas(m *model.Material, cantidad int) (*CalculoRetiro, error) {
	if cantidad < 1 {
		return nil, ErrCantidadInvalida
	}
	n := decimal.NewFromInt(int64(cantidad))
	return &CalculoRetiro{
		LaminasNecesarias: cantidad,
		Costo:             m.CostoPorLamina.Mul(n),
		Precio:            m.PrecioVentaPorLamina.Mul(n),
	}, nil
}

// calcularRetiroMetrosCuadrados: área directa. Si el llamador opta por usar
// sobros, primero se sirve de areaSobrosDisponible y sólo el resto se corta
// de láminas nuevas. El precio se cobra sobre toda el área solicitada,
// use sobros o no.
func calcularRetiroMetrosCuadrados(m *model.Material, geo Geometria, area float64, areaSobrosDisponible float64) (*CalculoRetiro, error) {
	if area <= 0 {
		return nil, ErrCantidadInvalida
	}
	calc := calcularConsumoArea(geo, area, areaSobrosDisponible)
	calc.Costo = m.CostoPorLamina.Mul(decimal.NewFromInt(int64(calc.LaminasNecesarias)))
	calc.Precio = m.PrecioPorMetroCuadrado.Mul(decimal.NewFromFloat(area)).Round(2)
	return calc, nil
}

// calcularRetiroMetrosLineales: corte dimensionado. El consumo de material se
// rige por el área (largo × ancho) igual que en metros cuadrados, pero el
// precio se cobra por largo + ancho sobre la tarifa de metro lineal. La
// asimetría es una regla de negocio deliberada: evita subcobrar cortes
// irregulares.
func calcularRetiroMetrosLineales(m *model.Material, geo Geometria, largo, ancho float64, areaSobrosDisponible float64) (*CalculoRetiro, error) {
	if largo <= 0 || ancho <= 0 {
		return nil, ErrCantidadInvalida
	}
	calc := calcularConsumoArea(geo, largo*ancho, areaSobrosDisponible)
	calc.Costo = m.CostoPorLamina.Mul(decimal.NewFromInt(int64(calc.LaminasNecesarias)))
	calc.Precio = m.PrecioPorMetroLineal.Mul(decimal.NewFromFloat(largo + ancho)).Round(2)
	return calc, nil
}

// calcularConsumoArea resuelve cuántas láminas cortar para cubrir areaNecesaria,
// descontando primero el área disponible en sobros.
func calcularConsumoArea(geo Geometria, areaNecesaria, areaSobrosDisponible float64) *CalculoRetiro {
	usadoDeSobros := math.Min(areaNecesaria, areaSobrosDisponible)
	restante := areaNecesaria - usadoDeSobros

	laminas := 0
	if restante > 0 {
		laminas = int(math.Ceil(restante / geo.AreaPorLamina))
	}

	sobro := float64(laminas)*geo.AreaPorLamina - restante
	if sobro <= areaMinimaSobro {
		sobro = 0
	}

	return &CalculoRetiro{
		LaminasNecesarias: laminas,
		AreaDeSobros:      usadoDeSobros,
		SobroGenerado:     sobro,
		AreaSolicitada:    areaNecesaria,
	}
}
