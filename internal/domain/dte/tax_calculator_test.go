package dte_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/facturasur/dte-engine/internal/domain/dte"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests ComputeTotals
//
// La misma línea de $1.190 produce desgloses distintos según la convención de
// precios del tipo de documento:
//
//	Boleta (precio bruto):  neto 1.000 + IVA 190            → total 1.190
//	Factura (precio neto):  neto 1.190 + IVA 226 (19%)      → total 1.416
//
// En ambos casos debe cumplirse Total == Net + Exempt + VAT con montos
// enteros en pesos.
// ──────────────────────────────────────────────────────────────────────────────

func line(qty, price int64) dte.LineInput {
	return dte.LineInput{
		Quantity:  decimal.NewFromInt(qty),
		UnitPrice: decimal.NewFromInt(price),
	}
}

func exemptLine(qty, price int64) dte.LineInput {
	l := line(qty, price)
	l.Exempt = true
	return l
}

func TestComputeTotals_BoletaExtraeIVADelBruto(t *testing.T) {
	totals := dte.ComputeTotals([]dte.LineInput{line(1, 1190)}, dte.Boleta)

	assert.Equal(t, int64(1000), totals.Net, "el neto se extrae del bruto: round(1190×100/119)")
	assert.Equal(t, int64(190), totals.VAT, "el IVA es la diferencia bruto − neto")
	assert.Equal(t, int64(0), totals.Exempt)
	assert.Equal(t, int64(1190), totals.Total, "el total de una boleta es la suma de líneas tal cual")
}

func TestComputeTotals_FacturaSumaIVAAlNeto(t *testing.T) {
	totals := dte.ComputeTotals([]dte.LineInput{line(1, 1190)}, dte.Factura)

	assert.Equal(t, int64(1190), totals.Net, "en factura el precio de línea ya es neto")
	assert.Equal(t, int64(226), totals.VAT, "IVA = round(1190×19/100) = round(226.1)")
	assert.Equal(t, int64(1416), totals.Total)
}

func TestComputeTotals_BoletaConLineaExenta(t *testing.T) {
	// La extracción de IVA aplica solo al bruto afecto; la línea exenta pasa
	// directo al exento.
	totals := dte.ComputeTotals([]dte.LineInput{
		line(1, 1190),
		exemptLine(1, 500),
	}, dte.Boleta)

	assert.Equal(t, int64(1000), totals.Net)
	assert.Equal(t, int64(190), totals.VAT)
	assert.Equal(t, int64(500), totals.Exempt)
	assert.Equal(t, int64(1690), totals.Total)
}

func TestComputeTotals_FacturaExentaSinIVA(t *testing.T) {
	totals := dte.ComputeTotals([]dte.LineInput{exemptLine(2, 750)}, dte.FacturaExenta)

	assert.Equal(t, int64(0), totals.Net)
	assert.Equal(t, int64(0), totals.VAT)
	assert.Equal(t, int64(1500), totals.Exempt)
	assert.Equal(t, int64(1500), totals.Total)
}

func TestComputeTotals_RedondeoMitadHaciaArriba(t *testing.T) {
	// Factura de $50: IVA exacto 9.5 debe redondear a 10.
	totals := dte.ComputeTotals([]dte.LineInput{line(1, 50)}, dte.Factura)
	assert.Equal(t, int64(10), totals.VAT, "round(9.5) = 10, mitad hacia arriba")
	assert.Equal(t, int64(60), totals.Total)

	// Boleta de $99: neto = round(9900/119) = round(83.19...) = 83, IVA 16.
	totals = dte.ComputeTotals([]dte.LineInput{line(1, 99)}, dte.Boleta)
	assert.Equal(t, int64(83), totals.Net)
	assert.Equal(t, int64(16), totals.VAT)
	assert.Equal(t, int64(99), totals.Total)
}

// TestComputeTotals_InvarianteTotal verifica que Total == Net + Exempt + VAT
// se mantiene en casos mixtos para ambas convenciones de precios.
func TestComputeTotals_InvarianteTotal(t *testing.T) {
	mixes := [][]dte.LineInput{
		{line(1, 1190)},
		{line(3, 333), exemptLine(1, 77)},
		{line(7, 1499), line(2, 990), exemptLine(5, 120)},
		{exemptLine(1, 1)},
		{},
	}
	for _, docType := range []dte.DocumentType{dte.Boleta, dte.BoletaExenta, dte.Factura, dte.NotaCredito} {
		for _, lines := range mixes {
			totals := dte.ComputeTotals(lines, docType)
			assert.Equal(t, totals.Total, totals.Net+totals.Exempt+totals.VAT,
				"invariante roto para tipo %s con %d líneas", docType, len(lines))
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests LineAmount — descuentos
// ──────────────────────────────────────────────────────────────────────────────

func TestLineAmount_SinDescuento(t *testing.T) {
	assert.Equal(t, int64(3000), dte.LineAmount(line(3, 1000)))
}

func TestLineAmount_DescuentoPorcentual(t *testing.T) {
	l := line(3, 1000)
	l.DiscountPct = decimal.NewFromInt(10)
	assert.Equal(t, int64(2700), dte.LineAmount(l), "3×1000 con 10% de descuento")
}

func TestLineAmount_DescuentoAbsoluto(t *testing.T) {
	l := line(2, 500)
	l.DiscountAmount = 100
	assert.Equal(t, int64(900), dte.LineAmount(l))
}

func TestLineAmount_DescuentoAbsolutoMandaSobrePorcentual(t *testing.T) {
	// Si ambos vienen (la validación de entrada lo impide aguas arriba), el
	// monto absoluto tiene precedencia.
	l := line(2, 500)
	l.DiscountAmount = 100
	l.DiscountPct = decimal.NewFromInt(50)
	assert.Equal(t, int64(900), dte.LineAmount(l))
}

func TestLineAmount_CantidadFraccionaria(t *testing.T) {
	// 1.5 kg × $333 = 499.5 → redondea a 500 antes del descuento.
	l := dte.LineInput{
		Quantity:  decimal.RequireFromString("1.5"),
		UnitPrice: decimal.NewFromInt(333),
	}
	assert.Equal(t, int64(500), dte.LineAmount(l))
}
