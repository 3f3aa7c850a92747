package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/facturasur/dte-engine/internal/domain"
	"github.com/facturasur/dte-engine/internal/domain/dte"
	"github.com/facturasur/dte-engine/internal/domain/entity"
	"github.com/facturasur/dte-engine/internal/domain/repository"
)

var _ repository.CAFRepository = (*CAFRepo)(nil)

const cafColumns = `id, company_id, document_type, folio_start, folio_end, current_folio,
	       authorization_date, expiration_date, raw_xml, private_key, public_key,
	       is_active, exhausted, created_by, created_at, updated_at`

// CAFRepo implementa CAFRepository sobre PostgreSQL (usable con pool o tx).
type CAFRepo struct {
	q Querier
}

// NewCAFRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCAFRepository(q Querier) *CAFRepo {
	return &CAFRepo{q: q}
}

func (r *CAFRepo) Create(ctx context.Context, caf *entity.CAF) error {
	const q = `
		INSERT INTO cafs
			(id, company_id, document_type, folio_start, folio_end, current_folio,
			 authorization_date, expiration_date, raw_xml, private_key, public_key,
			 is_active, exhausted, created_by, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, q,
		caf.ID, caf.CompanyID, caf.DocumentType.Code(), caf.FolioStart, caf.FolioEnd, caf.CurrentFolio,
		caf.AuthorizationDate, caf.ExpirationDate, caf.RawXML,
		nullIfEmpty(caf.PrivateKey), nullIfEmpty(caf.PublicKey),
		caf.IsActive, caf.Exhausted, caf.CreatedBy, caf.CreatedAt, caf.UpdatedAt,
	)
	if err != nil {
		// Índice único (company_id, document_type, folio_start).
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCAF
		}
		return fmt.Errorf("insert caf: %w", err)
	}
	return nil
}

func (r *CAFRepo) GetByID(ctx context.Context, id string) (*entity.CAF, error) {
	q := `SELECT ` + cafColumns + ` FROM cafs WHERE id = $1`
	caf, err := scanCAF(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get caf by id: %w", err)
	}
	return caf, nil
}

func (r *CAFRepo) ExistsRange(ctx context.Context, companyID string, docType dte.DocumentType, folioStart int64) (bool, error) {
	const q = `
		SELECT EXISTS(
			SELECT 1 FROM cafs
			WHERE company_id = $1 AND document_type = $2 AND folio_start = $3
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, q, companyID, docType.Code(), folioStart).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists caf range: %w", err)
	}
	return exists, nil
}

// SelectEligibleForUpdate toma el bloqueo exclusivo de la fila del CAF
// elegible. Dos emisiones concurrentes sobre el mismo CAF se serializan aquí:
// la segunda espera el Commit/Rollback de la primera y relee el contador ya
// avanzado. CAF de otras empresas o tipos no se bloquean entre sí.
// No filtra por vencimiento: esa condición la reporta el caso de uso.
func (r *CAFRepo) SelectEligibleForUpdate(ctx context.Context, companyID string, docType dte.DocumentType) (*entity.CAF, error) {
	q := `
		SELECT ` + cafColumns + `
		FROM cafs
		WHERE company_id    = $1
		  AND document_type = $2
		  AND is_active     = true
		  AND exhausted     = false
		ORDER BY current_folio ASC
		LIMIT 1
		FOR UPDATE`
	caf, err := scanCAF(r.q.QueryRow(ctx, q, companyID, docType.Code()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select caf for update: %w", err)
	}
	return caf, nil
}

func (r *CAFRepo) UpdateFolio(ctx context.Context, caf *entity.CAF) error {
	const q = `
		UPDATE cafs
		SET current_folio = $2, exhausted = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(ctx, q, caf.ID, caf.CurrentFolio, caf.Exhausted, caf.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update caf folio: %w", err)
	}
	return nil
}

func (r *CAFRepo) Deactivate(ctx context.Context, companyID, id string) (bool, error) {
	const q = `
		UPDATE cafs
		SET is_active = false, updated_at = now()
		WHERE id = $1 AND company_id = $2`
	tag, err := r.q.Exec(ctx, q, id, companyID)
	if err != nil {
		return false, fmt.Errorf("deactivate caf: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CAFRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.CAF, error) {
	q := `
		SELECT ` + cafColumns + `
		FROM cafs
		WHERE company_id = $1
		ORDER BY document_type ASC, folio_start ASC`
	return r.list(ctx, q, companyID)
}

func (r *CAFRepo) ListActive(ctx context.Context, companyID string) ([]*entity.CAF, error) {
	q := `
		SELECT ` + cafColumns + `
		FROM cafs
		WHERE company_id = $1 AND is_active = true
		ORDER BY document_type ASC, folio_start ASC`
	return r.list(ctx, q, companyID)
}

func (r *CAFRepo) ListByType(ctx context.Context, companyID string, docType dte.DocumentType) ([]*entity.CAF, error) {
	q := `
		SELECT ` + cafColumns + `
		FROM cafs
		WHERE company_id = $1 AND document_type = $2
		ORDER BY folio_start ASC`
	return r.list(ctx, q, companyID, docType.Code())
}

// AvailableByType suma folios restantes por tipo sobre CAF usables. Lectura
// sin bloqueo, puede quedar desactualizada bajo emisión concurrente.
func (r *CAFRepo) AvailableByType(ctx context.Context, companyID string) (map[dte.DocumentType]int64, error) {
	const q = `
		SELECT document_type,
		       COALESCE(SUM(GREATEST(folio_end - current_folio + 1, 0)), 0)
		FROM cafs
		WHERE company_id = $1
		  AND is_active  = true
		  AND exhausted  = false
		  AND (expiration_date IS NULL OR expiration_date >= now())
		GROUP BY document_type`
	rows, err := r.q.Query(ctx, q, companyID)
	if err != nil {
		return nil, fmt.Errorf("available folios by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[dte.DocumentType]int64)
	for rows.Next() {
		var code int
		var available int64
		if err := rows.Scan(&code, &available); err != nil {
			return nil, fmt.Errorf("scan available folios: %w", err)
		}
		counts[dte.DocumentType(code)] = available
	}
	return counts, rows.Err()
}

func (r *CAFRepo) list(ctx context.Context, q string, args ...any) ([]*entity.CAF, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list cafs: %w", err)
	}
	defer rows.Close()

	var list []*entity.CAF
	for rows.Next() {
		caf, err := scanCAF(rows)
		if err != nil {
			return nil, fmt.Errorf("scan caf: %w", err)
		}
		list = append(list, caf)
	}
	return list, rows.Err()
}

func scanCAF(row pgxScanner) (*entity.CAF, error) {
	var caf entity.CAF
	var docType int
	var privateKey, publicKey *string
	err := row.Scan(
		&caf.ID, &caf.CompanyID, &docType, &caf.FolioStart, &caf.FolioEnd, &caf.CurrentFolio,
		&caf.AuthorizationDate, &caf.ExpirationDate, &caf.RawXML, &privateKey, &publicKey,
		&caf.IsActive, &caf.Exhausted, &caf.CreatedBy, &caf.CreatedAt, &caf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	caf.DocumentType = dte.DocumentType(docType)
	caf.PrivateKey = derefStr(privateKey)
	caf.PublicKey = derefStr(publicKey)
	return &caf, nil
}
