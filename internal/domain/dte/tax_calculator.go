package dte

import "github.com/shopspring/decimal"

// VATPercent tasa de IVA vigente en Chile (porcentaje entero).
const VATPercent = 19

var (
	vatPct  = decimal.NewFromInt(VATPercent)
	hundred = decimal.NewFromInt(100)
)

// LineInput es una línea valorizada de un documento. DiscountAmount (monto en
// pesos) y DiscountPct (porcentaje 0..100) son excluyentes; si ambos vienen,
// manda el monto absoluto.
type LineInput struct {
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountPct    decimal.Decimal
	DiscountAmount int64
	Exempt         bool
}

// Totals es el desglose de montos de un documento en pesos, sin decimales.
// Invariante: Total == Net + Exempt + VAT, siempre, en aritmética entera.
type Totals struct {
	Net    int64
	Exempt int64
	VAT    int64
	Total  int64
}

// LineAmount calcula el monto de una línea: round(cantidad × precio unitario)
// menos el descuento. Redondeo a cero decimales, mitad hacia arriba.
func LineAmount(l LineInput) int64 {
	raw := l.Quantity.Mul(l.UnitPrice).Round(0)
	if l.DiscountAmount > 0 {
		return raw.IntPart() - l.DiscountAmount
	}
	if l.DiscountPct.IsPositive() {
		discount := raw.Mul(l.DiscountPct).Div(hundred).Round(0)
		return raw.Sub(discount).IntPart()
	}
	return raw.IntPart()
}

// ComputeTotals calcula neto, exento, IVA y total para las líneas dadas según
// la convención de precios del tipo de documento.
//
// Boletas (precios brutos): el total afecto es la suma de líneas tal cual; el
// neto se obtiene extrayendo el IVA del bruto afecto y el IVA es la
// diferencia. Las líneas exentas pasan directo al exento sin extracción.
//
// Facturas y notas (precios netos): el IVA se calcula sobre el neto y se suma
// al total.
func ComputeTotals(lines []LineInput, docType DocumentType) Totals {
	var affected, exempt int64
	for _, l := range lines {
		amount := LineAmount(l)
		if l.Exempt {
			exempt += amount
		} else {
			affected += amount
		}
	}

	if docType.PricesIncludeTax() {
		// affected es bruto: neto = round(bruto × 100 / 119), IVA = bruto − neto.
		net := decimal.NewFromInt(affected).
			Mul(hundred).
			Div(hundred.Add(vatPct)).
			Round(0).
			IntPart()
		vat := affected - net
		return Totals{
			Net:    net,
			Exempt: exempt,
			VAT:    vat,
			Total:  affected + exempt,
		}
	}

	vat := decimal.NewFromInt(affected).
		Mul(vatPct).
		Div(hundred).
		Round(0).
		IntPart()
	return Totals{
		Net:    affected,
		Exempt: exempt,
		VAT:    vat,
		Total:  affected + vat + exempt,
	}
}
