package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/facturasur/dte-engine/internal/domain/dte"
)

// Estados de un DTE frente al SII.
const (
	DTEStatusPending  = "PENDIENTE" // Emitido y persistido, aún no enviado
	DTEStatusSent     = "ENVIADO"   // Enviado al SII, respuesta pendiente
	DTEStatusAccepted = "ACEPTADO"  // Aceptado por el SII
	DTEStatusRejected = "RECHAZADO" // Rechazado por el SII
	DTEStatusError    = "ERROR"     // Falla de generación o envío
)

// ValidDTEStatuses estados aceptados al actualizar el ciclo de vida.
var ValidDTEStatuses = map[string]bool{
	DTEStatusPending:  true,
	DTEStatusSent:     true,
	DTEStatusAccepted: true,
	DTEStatusRejected: true,
	DTEStatusError:    true,
}

// DTE es la cabecera de un documento tributario electrónico emitido. El folio
// se asigna exactamente una vez al emitir y es inmutable; es único por
// (empresa, tipo de documento). Los montos son pesos enteros y cumplen
// TotalAmount == NetAmount + ExemptAmount + VATAmount.
type DTE struct {
	ID           string
	CompanyID    string
	BranchID     string
	DocumentType dte.DocumentType
	Folio        int64
	IssuedAt     time.Time

	// Emisor (contexto entregado por el llamador, no se consulta aquí).
	EmitterRUT      string
	EmitterName     string
	EmitterActivity string
	EmitterAddress  string
	EmitterCommune  string

	// Receptor. Obligatorio solo para facturas y notas.
	ReceiverRUT      string
	ReceiverName     string
	ReceiverActivity string
	ReceiverAddress  string
	ReceiverCommune  string
	ReceiverCity     string
	ReceiverEmail    string

	NetAmount    int64
	ExemptAmount int64
	VATRate      decimal.Decimal
	VATAmount    int64
	TotalAmount  int64

	Status       string
	TrackID      string // identificador de seguimiento del envío al SII
	StatusDetail string // glosa de estado devuelta por el SII
	SentAt       *time.Time
	AckedAt      *time.Time

	// Ubicación de los artefactos generados aguas abajo (XML timbrado, PDF).
	XMLPath string
	PDFPath string

	// Referencia a un documento anterior (notas de crédito/débito).
	RefDTEID      string
	RefReasonCode int
	RefReason     string

	// SaleID enlaza el documento con la venta que lo originó.
	SaleID string

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
