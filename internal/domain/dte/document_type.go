// Package dte contiene el núcleo de dominio de los Documentos Tributarios
// Electrónicos (SII, Chile): tipos de documento, cálculo de impuestos y los
// datos parseados de un CAF.
package dte

// DocumentType es el código SII del tipo de documento tributario electrónico.
type DocumentType int

// Tipos de documento soportados por el motor de emisión.
const (
	Factura       DocumentType = 33 // Factura electrónica afecta a IVA
	FacturaExenta DocumentType = 34 // Factura electrónica exenta
	Boleta        DocumentType = 39 // Boleta electrónica afecta a IVA
	BoletaExenta  DocumentType = 41 // Boleta electrónica exenta
	NotaDebito    DocumentType = 56 // Nota de débito electrónica
	NotaCredito   DocumentType = 61 // Nota de crédito electrónica
)

var documentTypeNames = map[DocumentType]string{
	Factura:       "FACTURA_ELECTRONICA",
	FacturaExenta: "FACTURA_EXENTA_ELECTRONICA",
	Boleta:        "BOLETA_ELECTRONICA",
	BoletaExenta:  "BOLETA_EXENTA_ELECTRONICA",
	NotaDebito:    "NOTA_DEBITO_ELECTRONICA",
	NotaCredito:   "NOTA_CREDITO_ELECTRONICA",
}

// ParseDocumentType mapea un código SII a su DocumentType. ok es false si el
// código no corresponde a ningún tipo soportado.
func ParseDocumentType(code int) (DocumentType, bool) {
	t := DocumentType(code)
	_, ok := documentTypeNames[t]
	return t, ok
}

// Valid indica si el tipo es uno de los soportados.
func (t DocumentType) Valid() bool {
	_, ok := documentTypeNames[t]
	return ok
}

func (t DocumentType) String() string {
	if name, ok := documentTypeNames[t]; ok {
		return name
	}
	return "DESCONOCIDO"
}

// Code devuelve el código numérico SII.
func (t DocumentType) Code() int { return int(t) }

// PricesIncludeTax indica si los precios de línea ya incluyen IVA.
// Las boletas se emiten con precios brutos (el consumidor final ve el precio
// con impuesto); las facturas y sus notas se emiten con precios netos.
// El calculador de impuestos ramifica sobre este predicado: aplicar la misma
// fórmula a ambos casos deja los totales corridos por el monto del IVA.
func (t DocumentType) PricesIncludeTax() bool {
	return t == Boleta || t == BoletaExenta
}

// RequiresRecipient indica si el documento exige identificar al receptor con
// su RUT. Las boletas a consumidor final no lo exigen.
func (t DocumentType) RequiresRecipient() bool {
	switch t {
	case Factura, FacturaExenta, NotaDebito, NotaCredito:
		return true
	}
	return false
}

// IsNote indica si el tipo es una nota de crédito o débito, que siempre
// referencia un documento anterior.
func (t DocumentType) IsNote() bool {
	return t == NotaCredito || t == NotaDebito
}

// Códigos de referencia SII para notas de crédito/débito (tabla de códigos
// del campo CodRef).
const (
	RefAnulaDocumento = 1 // Anula documento de referencia
	RefCorrigeTexto   = 2 // Corrige texto del documento de referencia
	RefCorrigeMontos  = 3 // Corrige montos del documento de referencia
)

// ValidReferenceCodes códigos CodRef aceptados al emitir una nota.
var ValidReferenceCodes = map[int]bool{
	RefAnulaDocumento: true,
	RefCorrigeTexto:   true,
	RefCorrigeMontos:  true,
}

// UnitDefault unidad de medida por defecto para líneas sin unidad explícita.
const UnitDefault = "UN"
