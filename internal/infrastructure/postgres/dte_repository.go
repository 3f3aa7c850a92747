package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/facturasur/dte-engine/internal/domain/dte"
	"github.com/facturasur/dte-engine/internal/domain/entity"
	"github.com/facturasur/dte-engine/internal/domain/repository"
)

var _ repository.DTERepository = (*DTERepo)(nil)

const dteColumns = `id, company_id, branch_id, document_type, folio, issued_at,
	       emitter_rut, emitter_name, emitter_activity, emitter_address, emitter_commune,
	       receiver_rut, receiver_name, receiver_activity, receiver_address,
	       receiver_commune, receiver_city, receiver_email,
	       net_amount, exempt_amount, vat_rate, vat_amount, total_amount,
	       status, track_id, status_detail, sent_at, acked_at, xml_path, pdf_path,
	       ref_dte_id, ref_reason_code, ref_reason, sale_id,
	       created_by, created_at, updated_at`

// DTERepo implementa DTERepository sobre PostgreSQL (usable con pool o tx).
type DTERepo struct {
	q Querier
}

// NewDTERepository construye el adaptador. Pasar pool o tx (Querier).
func NewDTERepository(q Querier) *DTERepo {
	return &DTERepo{q: q}
}

// Create persiste la cabecera. El índice único (company_id, document_type,
// folio) es la última defensa contra un folio duplicado.
func (r *DTERepo) Create(ctx context.Context, doc *entity.DTE) error {
	const q = `
		INSERT INTO dtes
			(id, company_id, branch_id, document_type, folio, issued_at,
			 emitter_rut, emitter_name, emitter_activity, emitter_address, emitter_commune,
			 receiver_rut, receiver_name, receiver_activity, receiver_address,
			 receiver_commune, receiver_city, receiver_email,
			 net_amount, exempt_amount, vat_rate, vat_amount, total_amount,
			 status, track_id, status_detail, sent_at, acked_at, xml_path, pdf_path,
			 ref_dte_id, ref_reason_code, ref_reason, sale_id,
			 created_by, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			 $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			 $31, $32, $33, $34, $35, $36, $37)`
	_, err := r.q.Exec(ctx, q,
		doc.ID, doc.CompanyID, nullIfEmpty(doc.BranchID), doc.DocumentType.Code(), doc.Folio, doc.IssuedAt,
		doc.EmitterRUT, doc.EmitterName, nullIfEmpty(doc.EmitterActivity),
		nullIfEmpty(doc.EmitterAddress), nullIfEmpty(doc.EmitterCommune),
		nullIfEmpty(doc.ReceiverRUT), nullIfEmpty(doc.ReceiverName), nullIfEmpty(doc.ReceiverActivity),
		nullIfEmpty(doc.ReceiverAddress), nullIfEmpty(doc.ReceiverCommune),
		nullIfEmpty(doc.ReceiverCity), nullIfEmpty(doc.ReceiverEmail),
		doc.NetAmount, doc.ExemptAmount, doc.VATRate, doc.VATAmount, doc.TotalAmount,
		doc.Status, nullIfEmpty(doc.TrackID), nullIfEmpty(doc.StatusDetail),
		doc.SentAt, doc.AckedAt, nullIfEmpty(doc.XMLPath), nullIfEmpty(doc.PDFPath),
		nullIfEmpty(doc.RefDTEID), nullIfZero(doc.RefReasonCode), nullIfEmpty(doc.RefReason),
		nullIfEmpty(doc.SaleID),
		doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("folio ya emitido para la empresa y tipo: %w", err)
		}
		return fmt.Errorf("insert dte: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de detalle.
func (r *DTERepo) CreateDetail(ctx context.Context, detail *entity.DTEDetail) error {
	const q = `
		INSERT INTO dte_details
			(id, dte_id, line_number, product_code, name, description,
			 quantity, unit, unit_price, discount_pct, discount_amount,
			 amount, exempt, product_id)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, q,
		detail.ID, detail.DTEID, detail.LineNumber,
		nullIfEmpty(detail.ProductCode), detail.Name, nullIfEmpty(detail.Description),
		detail.Quantity, detail.Unit, detail.UnitPrice,
		detail.DiscountPct, detail.DiscountAmount,
		detail.Amount, detail.Exempt, nullIfEmpty(detail.ProductID),
	)
	if err != nil {
		return fmt.Errorf("insert dte detail: %w", err)
	}
	return nil
}

func (r *DTERepo) GetByID(ctx context.Context, id string) (*entity.DTE, error) {
	q := `SELECT ` + dteColumns + ` FROM dtes WHERE id = $1`
	doc, err := scanDTE(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dte: %w", err)
	}
	return doc, nil
}

func (r *DTERepo) GetDetails(ctx context.Context, dteID string) ([]*entity.DTEDetail, error) {
	const q = `
		SELECT id, dte_id, line_number, product_code, name, description,
		       quantity, unit, unit_price, discount_pct, discount_amount,
		       amount, exempt, product_id
		FROM dte_details
		WHERE dte_id = $1
		ORDER BY line_number ASC`
	rows, err := r.q.Query(ctx, q, dteID)
	if err != nil {
		return nil, fmt.Errorf("list dte details: %w", err)
	}
	defer rows.Close()

	var details []*entity.DTEDetail
	for rows.Next() {
		var d entity.DTEDetail
		var productCode, description, productID *string
		if err := rows.Scan(
			&d.ID, &d.DTEID, &d.LineNumber, &productCode, &d.Name, &description,
			&d.Quantity, &d.Unit, &d.UnitPrice, &d.DiscountPct, &d.DiscountAmount,
			&d.Amount, &d.Exempt, &productID,
		); err != nil {
			return nil, fmt.Errorf("scan dte detail: %w", err)
		}
		d.ProductCode = derefStr(productCode)
		d.Description = derefStr(description)
		d.ProductID = derefStr(productID)
		details = append(details, &d)
	}
	return details, rows.Err()
}

// List devuelve la página filtrada más el total sin paginar. Orden estable:
// created_at DESC con id como desempate.
func (r *DTERepo) List(ctx context.Context, companyID string, f repository.DTEFilter) ([]*entity.DTE, int, error) {
	where := `WHERE company_id = $1`
	args := []any{companyID}
	if f.DocumentType != nil {
		args = append(args, f.DocumentType.Code())
		where += fmt.Sprintf(` AND document_type = $%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM dtes `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count dtes: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	q := `SELECT ` + dteColumns + ` FROM dtes ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	docs, err := r.listQuery(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *DTERepo) ListByDateRange(ctx context.Context, companyID string, from, toExclusive time.Time, docType *dte.DocumentType) ([]*entity.DTE, error) {
	where := `WHERE company_id = $1 AND issued_at >= $2 AND issued_at < $3`
	args := []any{companyID, from, toExclusive}
	if docType != nil {
		args = append(args, docType.Code())
		where += fmt.Sprintf(` AND document_type = $%d`, len(args))
	}
	q := `SELECT ` + dteColumns + ` FROM dtes ` + where + ` ORDER BY issued_at ASC, folio ASC`
	return r.listQuery(ctx, q, args...)
}

// UpdateStatus actualiza los campos de ciclo de vida. Folio y montos no se
// tocan desde aquí.
func (r *DTERepo) UpdateStatus(ctx context.Context, doc *entity.DTE) error {
	const q = `
		UPDATE dtes
		SET status        = $2,
		    track_id      = COALESCE($3, track_id),
		    status_detail = COALESCE($4, status_detail),
		    sent_at       = COALESCE($5, sent_at),
		    acked_at      = COALESCE($6, acked_at),
		    xml_path      = COALESCE($7, xml_path),
		    pdf_path      = COALESCE($8, pdf_path),
		    updated_at    = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, q,
		doc.ID, doc.Status,
		nullIfEmpty(doc.TrackID), nullIfEmpty(doc.StatusDetail),
		doc.SentAt, doc.AckedAt,
		nullIfEmpty(doc.XMLPath), nullIfEmpty(doc.PDFPath),
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update dte status: %w", err)
	}
	return nil
}

func (r *DTERepo) listQuery(ctx context.Context, q string, args ...any) ([]*entity.DTE, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list dtes: %w", err)
	}
	defer rows.Close()

	var docs []*entity.DTE
	for rows.Next() {
		doc, err := scanDTE(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dte: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func scanDTE(row pgxScanner) (*entity.DTE, error) {
	var doc entity.DTE
	var docType int
	var branchID, emitterActivity, emitterAddress, emitterCommune *string
	var receiverRUT, receiverName, receiverActivity, receiverAddress *string
	var receiverCommune, receiverCity, receiverEmail *string
	var trackID, statusDetail, xmlPath, pdfPath *string
	var refDTEID, refReason, saleID *string
	var refReasonCode *int

	err := row.Scan(
		&doc.ID, &doc.CompanyID, &branchID, &docType, &doc.Folio, &doc.IssuedAt,
		&doc.EmitterRUT, &doc.EmitterName, &emitterActivity, &emitterAddress, &emitterCommune,
		&receiverRUT, &receiverName, &receiverActivity, &receiverAddress,
		&receiverCommune, &receiverCity, &receiverEmail,
		&doc.NetAmount, &doc.ExemptAmount, &doc.VATRate, &doc.VATAmount, &doc.TotalAmount,
		&doc.Status, &trackID, &statusDetail, &doc.SentAt, &doc.AckedAt, &xmlPath, &pdfPath,
		&refDTEID, &refReasonCode, &refReason, &saleID,
		&doc.CreatedBy, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.DocumentType = dte.DocumentType(docType)
	doc.BranchID = derefStr(branchID)
	doc.EmitterActivity = derefStr(emitterActivity)
	doc.EmitterAddress = derefStr(emitterAddress)
	doc.EmitterCommune = derefStr(emitterCommune)
	doc.ReceiverRUT = derefStr(receiverRUT)
	doc.ReceiverName = derefStr(receiverName)
	doc.ReceiverActivity = derefStr(receiverActivity)
	doc.ReceiverAddress = derefStr(receiverAddress)
	doc.ReceiverCommune = derefStr(receiverCommune)
	doc.ReceiverCity = derefStr(receiverCity)
	doc.ReceiverEmail = derefStr(receiverEmail)
	doc.TrackID = derefStr(trackID)
	doc.StatusDetail = derefStr(statusDetail)
	doc.XMLPath = derefStr(xmlPath)
	doc.PDFPath = derefStr(pdfPath)
	doc.RefDTEID = derefStr(refDTEID)
	doc.RefReasonCode = derefInt(refReasonCode)
	doc.RefReason = derefStr(refReason)
	doc.SaleID = derefStr(saleID)
	return &doc, nil
}
