package entity

import (
	"time"

	"github.com/facturasur/dte-engine/internal/domain/dte"
)

// CAF representa un Código de Autorización de Folios del SII: un rango
// contiguo de folios autorizado para una empresa y un tipo de documento.
// CurrentFolio es el próximo folio a emitir; cuando supera FolioEnd el rango
// está agotado. Es el único estado mutable compartido del motor y su avance
// debe serializarse por fila (ver CAFRepository.SelectEligibleForUpdate).
type CAF struct {
	ID           string
	CompanyID    string
	DocumentType dte.DocumentType
	FolioStart   int64
	FolioEnd     int64
	CurrentFolio int64

	AuthorizationDate time.Time
	ExpirationDate    *time.Time

	// RawXML es el CAF original del SII; PrivateKey/PublicKey el material de
	// llaves embebido (opaco para este motor, lo consume el timbraje).
	RawXML     string
	PrivateKey string
	PublicKey  string

	IsActive  bool
	Exhausted bool

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available devuelve la cantidad de folios que restan por emitir.
func (c *CAF) Available() int64 {
	if c.CurrentFolio > c.FolioEnd {
		return 0
	}
	return c.FolioEnd - c.CurrentFolio + 1
}

// ExpiredAt indica si el CAF está vencido en el instante dado. Un CAF sin
// fecha de vencimiento no expira.
func (c *CAF) ExpiredAt(now time.Time) bool {
	return c.ExpirationDate != nil && c.ExpirationDate.Before(now)
}

// TakeFolio consume el folio actual, avanza el contador y marca el CAF como
// agotado al pasar FolioEnd. El llamador debe sostener el bloqueo de fila y
// persistir el CAF en la misma transacción.
func (c *CAF) TakeFolio() int64 {
	folio := c.CurrentFolio
	c.CurrentFolio++
	if c.CurrentFolio > c.FolioEnd {
		c.Exhausted = true
	}
	return folio
}
