package dte_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/facturasur/dte-engine/internal/domain/dte"
)

func TestParseDocumentType_CodigosSoportados(t *testing.T) {
	for _, code := range []int{33, 34, 39, 41, 56, 61} {
		docType, ok := dte.ParseDocumentType(code)
		assert.True(t, ok, "el código %d debe ser soportado", code)
		assert.Equal(t, code, docType.Code())
	}
}

func TestParseDocumentType_CodigoDesconocido(t *testing.T) {
	for _, code := range []int{0, 1, 40, 52, 110, -33} {
		_, ok := dte.ParseDocumentType(code)
		assert.False(t, ok, "el código %d no debe ser soportado", code)
	}
}

func TestDocumentType_ConvencionDePrecios(t *testing.T) {
	// Solo las boletas se emiten con precios que ya incluyen IVA.
	assert.True(t, dte.Boleta.PricesIncludeTax())
	assert.True(t, dte.BoletaExenta.PricesIncludeTax())
	assert.False(t, dte.Factura.PricesIncludeTax())
	assert.False(t, dte.FacturaExenta.PricesIncludeTax())
	assert.False(t, dte.NotaDebito.PricesIncludeTax())
	assert.False(t, dte.NotaCredito.PricesIncludeTax())
}

func TestDocumentType_ReceptorObligatorio(t *testing.T) {
	// Las boletas a consumidor final no exigen identificar al receptor.
	assert.False(t, dte.Boleta.RequiresRecipient())
	assert.False(t, dte.BoletaExenta.RequiresRecipient())
	assert.True(t, dte.Factura.RequiresRecipient())
	assert.True(t, dte.FacturaExenta.RequiresRecipient())
	assert.True(t, dte.NotaDebito.RequiresRecipient())
	assert.True(t, dte.NotaCredito.RequiresRecipient())
}

func TestDocumentType_Notas(t *testing.T) {
	assert.True(t, dte.NotaCredito.IsNote())
	assert.True(t, dte.NotaDebito.IsNote())
	assert.False(t, dte.Boleta.IsNote())
	assert.False(t, dte.Factura.IsNote())
}

func TestDocumentType_String(t *testing.T) {
	assert.Equal(t, "BOLETA_ELECTRONICA", dte.Boleta.String())
	assert.Equal(t, "FACTURA_ELECTRONICA", dte.Factura.String())
	assert.Equal(t, "DESCONOCIDO", dte.DocumentType(99).String())
}
