package repository

import (
	"context"

	"github.com/facturasur/dte-engine/internal/domain/dte"
	"github.com/facturasur/dte-engine/internal/domain/entity"
)

// CAFRepository define el puerto de persistencia para los CAF (rangos de
// folios autorizados).
type CAFRepository interface {
	Create(ctx context.Context, caf *entity.CAF) error
	GetByID(ctx context.Context, id string) (*entity.CAF, error)

	// ExistsRange indica si ya hay un CAF registrado para la empresa y tipo que
	// comienza en folioStart (detección de carga duplicada del mismo archivo).
	ExistsRange(ctx context.Context, companyID string, docType dte.DocumentType, folioStart int64) (bool, error)

	// SelectEligibleForUpdate es la consulta crítica de la emisión. Selecciona
	// el CAF elegible (activo, no agotado, de la empresa y tipo dados; si hay
	// varios, el de menor CurrentFolio) tomando un bloqueo exclusivo de fila
	// (SELECT ... FOR UPDATE) que serializa el read-modify-write del contador.
	// Solo tiene sentido sobre un repositorio atado a una transacción.
	// Devuelve nil, nil si ningún CAF es elegible. No filtra por vencimiento:
	// esa condición la distingue el caso de uso para reportarla por separado.
	SelectEligibleForUpdate(ctx context.Context, companyID string, docType dte.DocumentType) (*entity.CAF, error)

	// UpdateFolio persiste CurrentFolio/Exhausted tras consumir un folio. Debe
	// ejecutarse en la misma transacción que tomó el bloqueo.
	UpdateFolio(ctx context.Context, caf *entity.CAF) error

	// Deactivate desactiva el CAF de la empresa. Idempotente; found es false si
	// el CAF no existe o pertenece a otra empresa.
	Deactivate(ctx context.Context, companyID, id string) (found bool, err error)

	ListByCompany(ctx context.Context, companyID string) ([]*entity.CAF, error)
	ListActive(ctx context.Context, companyID string) ([]*entity.CAF, error)
	ListByType(ctx context.Context, companyID string, docType dte.DocumentType) ([]*entity.CAF, error)

	// AvailableByType devuelve folios restantes por tipo de documento sobre los
	// CAF activos, no agotados y no vencidos. Lectura sin bloqueo: el conteo
	// puede quedar desactualizado bajo emisión concurrente.
	AvailableByType(ctx context.Context, companyID string) (map[dte.DocumentType]int64, error)
}
