package entity

import "github.com/shopspring/decimal"

// DTEDetail es una línea de detalle de un DTE. Las líneas pertenecen al
// documento (se persisten y leen siempre con él) y se numeran 1..N en el
// orden de entrada. Amount = round(Quantity × UnitPrice) − descuento, con el
// mismo redondeo del calculador de impuestos.
type DTEDetail struct {
	ID         string
	DTEID      string
	LineNumber int

	ProductCode string
	Name        string
	Description string

	Quantity  decimal.Decimal
	Unit      string
	UnitPrice decimal.Decimal

	// DiscountPct y DiscountAmount son excluyentes.
	DiscountPct    decimal.Decimal
	DiscountAmount int64

	Amount int64
	Exempt bool

	// ProductID enlaza opcionalmente con el catálogo de productos.
	ProductID string
}
