package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/facturasur/dte-engine/internal/application/dto"
	"github.com/facturasur/dte-engine/internal/domain"
	"github.com/facturasur/dte-engine/internal/domain/dte"
	"github.com/facturasur/dte-engine/internal/domain/entity"
	"github.com/facturasur/dte-engine/internal/domain/repository"
)

// FolioLedger administra los rangos de folios autorizados: registro de CAF,
// asignación del próximo folio y consultas de disponibilidad.
type FolioLedger struct {
	cafRepo repository.CAFRepository
	parser  CAFParser
}

// NewFolioLedger construye el ledger.
func NewFolioLedger(cafRepo repository.CAFRepository, parser CAFParser) *FolioLedger {
	return &FolioLedger{cafRepo: cafRepo, parser: parser}
}

// RegisterCAF parsea y registra un CAF subido por la empresa. Falla con
// ErrDuplicateCAF si ya hay un CAF del mismo tipo que comienza en el mismo
// folio (carga repetida del mismo archivo).
func (uc *FolioLedger) RegisterCAF(ctx context.Context, companyID, userID string, rawXML []byte) (*dto.CAFResponse, error) {
	if companyID == "" || len(rawXML) == 0 {
		return nil, domain.ErrInvalidInput
	}
	data, err := uc.parser.Parse(rawXML)
	if err != nil {
		return nil, err
	}

	exists, err := uc.cafRepo.ExistsRange(ctx, companyID, data.DocumentType, data.FolioStart)
	if err != nil {
		return nil, fmt.Errorf("verificar rango duplicado: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateCAF
	}

	now := time.Now()
	caf := &entity.CAF{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		DocumentType:      data.DocumentType,
		FolioStart:        data.FolioStart,
		FolioEnd:          data.FolioEnd,
		CurrentFolio:      data.FolioStart,
		AuthorizationDate: data.AuthorizationDate,
		ExpirationDate:    data.ExpirationDate,
		RawXML:            data.RawXML,
		PrivateKey:        data.PrivateKey,
		PublicKey:         data.PublicKey,
		IsActive:          true,
		Exhausted:         false,
		CreatedBy:         userID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.cafRepo.Create(ctx, caf); err != nil {
		return nil, err
	}
	return toCAFResponse(caf), nil
}

// IssueNextFolioInTx obtiene el próximo folio para la empresa y tipo dados.
// Debe invocarse con un cafRepo atado a la transacción de emisión:
// SelectEligibleForUpdate toma el bloqueo de fila que serializa el
// read-increment-write del contador, y UpdateFolio persiste el avance dentro
// de la misma transacción. Si la transacción hace rollback el folio no queda
// consumido.
func (uc *FolioLedger) IssueNextFolioInTx(ctx context.Context, cafRepo repository.CAFRepository, companyID string, docType dte.DocumentType, now time.Time) (int64, error) {
	caf, err := cafRepo.SelectEligibleForUpdate(ctx, companyID, docType)
	if err != nil {
		return 0, fmt.Errorf("seleccionar CAF elegible: %w", err)
	}
	if caf == nil {
		return 0, domain.ErrNoFolios
	}
	// El vencimiento se chequea después de la selección para reportarlo como
	// condición propia: el rango tiene folios pero el SII ya no los autoriza.
	if caf.ExpiredAt(now) {
		return 0, domain.ErrCAFExpired
	}

	folio := caf.TakeFolio()
	caf.UpdatedAt = now
	if err := cafRepo.UpdateFolio(ctx, caf); err != nil {
		return 0, fmt.Errorf("avanzar folio: %w", err)
	}
	return folio, nil
}

// Deactivate desactiva un CAF de la empresa. Idempotente.
func (uc *FolioLedger) Deactivate(ctx context.Context, companyID, cafID string) error {
	if cafID == "" {
		return domain.ErrInvalidInput
	}
	found, err := uc.cafRepo.Deactivate(ctx, companyID, cafID)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// ListActive lista los CAF activos de la empresa.
func (uc *FolioLedger) ListActive(ctx context.Context, companyID string) ([]dto.CAFResponse, error) {
	cafs, err := uc.cafRepo.ListActive(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return toCAFResponses(cafs), nil
}

// ListByType lista los CAF de la empresa para un tipo de documento.
func (uc *FolioLedger) ListByType(ctx context.Context, companyID string, docType dte.DocumentType) ([]dto.CAFResponse, error) {
	if !docType.Valid() {
		return nil, domain.ErrInvalidInput
	}
	cafs, err := uc.cafRepo.ListByType(ctx, companyID, docType)
	if err != nil {
		return nil, err
	}
	return toCAFResponses(cafs), nil
}

// ListAll lista todos los CAF de la empresa, activos e inactivos.
func (uc *FolioLedger) ListAll(ctx context.Context, companyID string) ([]dto.CAFResponse, error) {
	cafs, err := uc.cafRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return toCAFResponses(cafs), nil
}

// AvailableByType devuelve folios restantes por tipo de documento. El conteo
// puede quedar levemente desactualizado bajo emisión concurrente.
func (uc *FolioLedger) AvailableByType(ctx context.Context, companyID string) ([]dto.FolioAvailability, error) {
	counts, err := uc.cafRepo.AvailableByType(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FolioAvailability, 0, len(counts))
	for _, t := range []dte.DocumentType{dte.Factura, dte.FacturaExenta, dte.Boleta, dte.BoletaExenta, dte.NotaDebito, dte.NotaCredito} {
		if n, ok := counts[t]; ok {
			out = append(out, dto.FolioAvailability{DocumentType: t.Code(), Name: t.String(), Available: n})
		}
	}
	return out, nil
}

func toCAFResponse(caf *entity.CAF) *dto.CAFResponse {
	resp := &dto.CAFResponse{
		ID:                caf.ID,
		DocumentType:      caf.DocumentType.Code(),
		FolioStart:        caf.FolioStart,
		FolioEnd:          caf.FolioEnd,
		CurrentFolio:      caf.CurrentFolio,
		Available:         caf.Available(),
		AuthorizationDate: caf.AuthorizationDate.Format("2006-01-02"),
		IsActive:          caf.IsActive,
		Exhausted:         caf.Exhausted,
		CreatedAt:         caf.CreatedAt.Format(time.RFC3339),
	}
	if caf.ExpirationDate != nil {
		resp.ExpirationDate = caf.ExpirationDate.Format("2006-01-02")
	}
	return resp
}

func toCAFResponses(cafs []*entity.CAF) []dto.CAFResponse {
	out := make([]dto.CAFResponse, 0, len(cafs))
	for _, caf := range cafs {
		out = append(out, *toCAFResponse(caf))
	}
	return out
}
