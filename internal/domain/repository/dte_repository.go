package repository

import (
	"context"
	"time"

	"github.com/facturasur/dte-engine/internal/domain/dte"
	"github.com/facturasur/dte-engine/internal/domain/entity"
)

// DTEFilter filtros del listado de documentos.
type DTEFilter struct {
	DocumentType *dte.DocumentType
	Status       string
	Limit        int
	Offset       int
}

// DTERepository define el puerto de persistencia para documentos y sus líneas.
type DTERepository interface {
	Create(ctx context.Context, doc *entity.DTE) error
	CreateDetail(ctx context.Context, detail *entity.DTEDetail) error

	GetByID(ctx context.Context, id string) (*entity.DTE, error)
	GetDetails(ctx context.Context, dteID string) ([]*entity.DTEDetail, error)

	// List devuelve la página de documentos de la empresa ordenada por fecha de
	// creación descendente, junto con el total sin paginar.
	List(ctx context.Context, companyID string, f DTEFilter) ([]*entity.DTE, int, error)

	// ListByDateRange devuelve los documentos con fecha de emisión en
	// [from, toExclusive), opcionalmente filtrados por tipo (libro de ventas).
	ListByDateRange(ctx context.Context, companyID string, from, toExclusive time.Time, docType *dte.DocumentType) ([]*entity.DTE, error)

	// UpdateStatus actualiza los campos de ciclo de vida frente al SII:
	// status, track_id, glosa, timestamps de envío/respuesta y artefactos.
	UpdateStatus(ctx context.Context, doc *entity.DTE) error
}
