package service

import (
	"math"

	"github.com/shopspring/decimal"
)

// CalcularCuota devuelve la cuota mensual fija de un préstamo.
// Con tasa cero la cuota es exactamente principal/meses; con tasa positiva
// se aplica la fórmula estándar de amortización francesa:
//
//	cuota = P × i × (1+i)^n / ((1+i)^n − 1), i = tasa anual / 100 / 12
//
// El resultado se redondea a dos decimales.
func CalcularCuota(principal decimal.Decimal, tasaAnualPct decimal.Decimal, meses int) decimal.Decimal {
	if meses < 1 {
		return decimal.Zero
	}
	if tasaAnualPct.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(meses))).Round(2)
	}

	i, _ := tasaAnualPct.Float64()
	tasaMensual := i / 100 / 12
	p, _ := principal.Float64()
	factor := math.Pow(1+tasaMensual, float64(meses))
	cuota := p * tasaMensual * factor / (factor - 1)
	return decimal.NewFromFloat(cuota).Round(2)
}

// CalcularAbono divide un pago entre capital e interés.
// Con tasa cero todo el pago es capital. Con tasa positiva el interés del
// período es saldo × tasa mensual; si el pago no alcanza ni para el interés,
// todo el pago es interés y el capital queda en cero.
// Invariante: capital + interés == monto a dos decimales.
func CalcularAbono(saldo, tasaAnualPct, monto decimal.Decimal) (capital, interes decimal.Decimal) {
	monto = monto.Round(2)
	if tasaAnualPct.IsZero() {
		return monto, decimal.Zero
	}

	tasaMensual := tasaAnualPct.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))
	interes = saldo.Mul(tasaMensual).Round(2)
	if monto.GreaterThanOrEqual(interes) {
		return monto.Sub(interes), interes
	}
	return decimal.Zero, monto
}

// ValidarAbono rechaza cualquier división que no sume el monto del pago.
func ValidarAbono(capital, interes, monto decimal.Decimal) error {
	if !capital.Add(interes).Round(2).Equal(monto.Round(2)) {
		return ErrAbonoDescuadrado
	}
	return nil
}
