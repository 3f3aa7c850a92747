package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/facturasur/dte-engine/internal/application/dto"
	"github.com/facturasur/dte-engine/internal/domain"
	"github.com/facturasur/dte-engine/internal/domain/dte"
	"github.com/facturasur/dte-engine/internal/domain/entity"
	"github.com/facturasur/dte-engine/internal/domain/repository"
	"github.com/facturasur/dte-engine/pkg/sii"
)

// EmitDTEUseCase orquesta la emisión: valida la petición, obtiene el folio
// del ledger, calcula los montos y persiste cabecera y detalle en una sola
// transacción. También sirve las rutas de lectura.
type EmitDTEUseCase struct {
	txRunner BillingTxRunner
	ledger   *FolioLedger
	dteRepo  repository.DTERepository
	// artifactBase prefijo de la ruta determinística del XML timbrado que se
	// genera aguas abajo, ej. /artifacts.
	artifactBase string
}

// NewEmitDTEUseCase construye el caso de uso.
func NewEmitDTEUseCase(txRunner BillingTxRunner, ledger *FolioLedger, dteRepo repository.DTERepository, artifactBase string) *EmitDTEUseCase {
	if artifactBase == "" {
		artifactBase = "/artifacts"
	}
	return &EmitDTEUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		dteRepo:      dteRepo,
		artifactBase: artifactBase,
	}
}

// Emit emite un documento tributario. El folio se consume y el documento se
// escribe en la misma transacción: cualquier falla revierte ambos.
func (uc *EmitDTEUseCase) Emit(ctx context.Context, companyID, branchID, userID string, in dto.EmitDTERequest) (*dto.DTEResponse, error) {
	docType, err := uc.validate(companyID, in)
	if err != nil {
		return nil, err
	}

	lineInputs := make([]dte.LineInput, len(in.Lines))
	for i, l := range in.Lines {
		lineInputs[i] = dte.LineInput{
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			DiscountPct:    l.DiscountPct,
			DiscountAmount: l.DiscountAmount,
			Exempt:         l.Exempt,
		}
	}
	totals := dte.ComputeTotals(lineInputs, docType)

	now := time.Now()
	var doc *entity.DTE
	var details []*entity.DTEDetail

	err = uc.txRunner.RunBilling(ctx, func(cafRepo repository.CAFRepository, dteRepo repository.DTERepository) error {
		// 1) Folio: bloqueo de fila + avance del contador dentro de esta tx.
		folio, err := uc.ledger.IssueNextFolioInTx(ctx, cafRepo, companyID, docType, now)
		if err != nil {
			return err
		}

		// 2) Cabecera en estado PENDIENTE con los montos calculados.
		doc = &entity.DTE{
			ID:           uuid.New().String(),
			CompanyID:    companyID,
			BranchID:     branchID,
			DocumentType: docType,
			Folio:        folio,
			IssuedAt:     now,

			EmitterRUT:      in.Issuer.RUT,
			EmitterName:     in.Issuer.Name,
			EmitterActivity: in.Issuer.Activity,
			EmitterAddress:  in.Issuer.Address,
			EmitterCommune:  in.Issuer.Commune,

			ReceiverRUT:      in.Recipient.RUT,
			ReceiverName:     in.Recipient.Name,
			ReceiverActivity: in.Recipient.Activity,
			ReceiverAddress:  in.Recipient.Address,
			ReceiverCommune:  in.Recipient.Commune,
			ReceiverCity:     in.Recipient.City,
			ReceiverEmail:    in.Recipient.Email,

			NetAmount:    totals.Net,
			ExemptAmount: totals.Exempt,
			VATRate:      decimal.NewFromInt(dte.VATPercent),
			VATAmount:    totals.VAT,
			TotalAmount:  totals.Total,

			Status:  entity.DTEStatusPending,
			XMLPath: uc.artifactPath(companyID, docType, folio),

			RefDTEID:      in.RefDTEID,
			RefReasonCode: in.RefReasonCode,
			RefReason:     in.RefReason,
			SaleID:        in.SaleID,

			CreatedBy: userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := dteRepo.Create(ctx, doc); err != nil {
			return err
		}

		// 3) Detalle ordenado 1..N con el mismo redondeo del calculador.
		details = make([]*entity.DTEDetail, 0, len(in.Lines))
		for i, l := range in.Lines {
			unit := l.Unit
			if unit == "" {
				unit = dte.UnitDefault
			}
			detail := &entity.DTEDetail{
				ID:             uuid.New().String(),
				DTEID:          doc.ID,
				LineNumber:     i + 1,
				ProductCode:    l.Code,
				Name:           l.Name,
				Description:    l.Description,
				Quantity:       l.Quantity,
				Unit:           unit,
				UnitPrice:      l.UnitPrice,
				DiscountPct:    l.DiscountPct,
				DiscountAmount: l.DiscountAmount,
				Amount:         dte.LineAmount(lineInputs[i]),
				Exempt:         l.Exempt,
				ProductID:      l.ProductID,
			}
			if err := dteRepo.CreateDetail(ctx, detail); err != nil {
				return err
			}
			details = append(details, detail)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDTEResponse(doc, details), nil
}

// validate aplica las reglas de entrada previas a tocar la base.
func (uc *EmitDTEUseCase) validate(companyID string, in dto.EmitDTERequest) (dte.DocumentType, error) {
	if companyID == "" {
		return 0, domain.ErrInvalidInput
	}
	docType, ok := dte.ParseDocumentType(in.DocumentType)
	if !ok {
		return 0, fmt.Errorf("%w: tipo de documento desconocido: %d", domain.ErrInvalidInput, in.DocumentType)
	}
	if len(in.Lines) == 0 {
		return 0, fmt.Errorf("%w: el documento requiere al menos una línea", domain.ErrInvalidInput)
	}
	if in.Issuer.RUT == "" || in.Issuer.Name == "" {
		return 0, fmt.Errorf("%w: falta el contexto del emisor", domain.ErrInvalidInput)
	}
	for i, l := range in.Lines {
		if l.Name == "" {
			return 0, fmt.Errorf("%w: línea %d sin nombre de ítem", domain.ErrInvalidInput, i+1)
		}
		if !l.Quantity.IsPositive() {
			return 0, fmt.Errorf("%w: línea %d con cantidad no positiva", domain.ErrInvalidInput, i+1)
		}
		if l.UnitPrice.IsNegative() {
			return 0, fmt.Errorf("%w: línea %d con precio negativo", domain.ErrInvalidInput, i+1)
		}
		if l.DiscountAmount > 0 && l.DiscountPct.IsPositive() {
			return 0, fmt.Errorf("%w: línea %d con descuento porcentual y absoluto a la vez", domain.ErrInvalidInput, i+1)
		}
		if l.DiscountAmount < 0 || l.DiscountPct.IsNegative() || l.DiscountPct.GreaterThan(decimal.NewFromInt(100)) {
			return 0, fmt.Errorf("%w: línea %d con descuento fuera de rango", domain.ErrInvalidInput, i+1)
		}
	}
	if docType.RequiresRecipient() {
		if in.Recipient.RUT == "" {
			return 0, fmt.Errorf("%w: el tipo %s requiere RUT del receptor", domain.ErrInvalidInput, docType)
		}
		if err := sii.ValidateRUT(in.Recipient.RUT); err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}
	if docType.IsNote() && in.RefDTEID == "" {
		return 0, fmt.Errorf("%w: las notas requieren referencia al documento original", domain.ErrInvalidInput)
	}
	if in.RefDTEID != "" && !dte.ValidReferenceCodes[in.RefReasonCode] {
		return 0, fmt.Errorf("%w: código de referencia inválido: %d", domain.ErrInvalidInput, in.RefReasonCode)
	}
	return docType, nil
}

// artifactPath ruta determinística del XML timbrado: el generador (fuera de
// este motor) escribe en esta misma ruta.
func (uc *EmitDTEUseCase) artifactPath(companyID string, docType dte.DocumentType, folio int64) string {
	return fmt.Sprintf("%s/%s/dte/%d_%d.xml", uc.artifactBase, companyID, docType.Code(), folio)
}

// GetByID obtiene un documento con su detalle. ErrNotFound si no existe o
// pertenece a otra empresa.
func (uc *EmitDTEUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.DTEResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	doc, err := uc.dteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	details, err := uc.dteRepo.GetDetails(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return toDTEResponse(doc, details), nil
}

// GetStatus devuelve la proyección ligera de estado para polling.
func (uc *EmitDTEUseCase) GetStatus(ctx context.Context, companyID, id string) (*dto.DTEStatusResponse, error) {
	doc, err := uc.dteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	resp := &dto.DTEStatusResponse{
		ID:           doc.ID,
		Status:       doc.Status,
		TrackID:      doc.TrackID,
		StatusDetail: doc.StatusDetail,
	}
	if doc.SentAt != nil {
		resp.SentAt = doc.SentAt.Format(time.RFC3339)
	}
	if doc.AckedAt != nil {
		resp.AckedAt = doc.AckedAt.Format(time.RFC3339)
	}
	return resp, nil
}

// UpdateStatus escribe el resultado del flujo de firma/envío sobre un
// documento ya emitido. El folio y los montos son inmutables; solo avanza el
// ciclo de vida.
func (uc *EmitDTEUseCase) UpdateStatus(ctx context.Context, companyID, id string, in dto.UpdateDTEStatusRequest) (*dto.DTEStatusResponse, error) {
	if !entity.ValidDTEStatuses[in.Status] {
		return nil, fmt.Errorf("%w: estado desconocido: %q", domain.ErrInvalidInput, in.Status)
	}
	doc, err := uc.dteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	doc.Status = in.Status
	if in.TrackID != "" {
		doc.TrackID = in.TrackID
	}
	if in.StatusDetail != "" {
		doc.StatusDetail = in.StatusDetail
	}
	if in.XMLPath != "" {
		doc.XMLPath = in.XMLPath
	}
	if in.PDFPath != "" {
		doc.PDFPath = in.PDFPath
	}
	switch in.Status {
	case entity.DTEStatusSent:
		doc.SentAt = &now
	case entity.DTEStatusAccepted, entity.DTEStatusRejected:
		doc.AckedAt = &now
	}
	doc.UpdatedAt = now
	if err := uc.dteRepo.UpdateStatus(ctx, doc); err != nil {
		return nil, err
	}
	return uc.GetStatus(ctx, companyID, id)
}

// List devuelve la página de documentos de la empresa, filtrable por tipo y
// estado, ordenada por fecha de creación descendente.
func (uc *EmitDTEUseCase) List(ctx context.Context, companyID string, typeCode *int, status string, page dto.PageRequest) (*dto.DTEListResponse, error) {
	page.DefaultPage()
	filter := repository.DTEFilter{
		Status: status,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if typeCode != nil {
		docType, ok := dte.ParseDocumentType(*typeCode)
		if !ok {
			return nil, fmt.Errorf("%w: tipo de documento desconocido: %d", domain.ErrInvalidInput, *typeCode)
		}
		filter.DocumentType = &docType
	}
	if status != "" && !entity.ValidDTEStatuses[status] {
		return nil, fmt.Errorf("%w: estado desconocido: %q", domain.ErrInvalidInput, status)
	}

	docs, total, err := uc.dteRepo.List(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DTEResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, *toDTEResponse(doc, nil))
	}
	return &dto.DTEListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// SalesLedger devuelve los documentos con fecha de emisión en [from, to]
// inclusive, con detalle, para el libro de ventas.
func (uc *EmitDTEUseCase) SalesLedger(ctx context.Context, companyID string, from, to time.Time, typeCode *int) ([]dto.DTEResponse, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	var docType *dte.DocumentType
	if typeCode != nil {
		t, ok := dte.ParseDocumentType(*typeCode)
		if !ok {
			return nil, fmt.Errorf("%w: tipo de documento desconocido: %d", domain.ErrInvalidInput, *typeCode)
		}
		docType = &t
	}

	// Límite superior exclusivo al día siguiente para incluir todo el día "to".
	toExclusive := to.AddDate(0, 0, 1)
	docs, err := uc.dteRepo.ListByDateRange(ctx, companyID, from, toExclusive, docType)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DTEResponse, 0, len(docs))
	for _, doc := range docs {
		details, err := uc.dteRepo.GetDetails(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *toDTEResponse(doc, details))
	}
	return out, nil
}

func toDTEResponse(doc *entity.DTE, details []*entity.DTEDetail) *dto.DTEResponse {
	resp := &dto.DTEResponse{
		ID:           doc.ID,
		DocumentType: doc.DocumentType.Code(),
		Folio:        doc.Folio,
		IssuedAt:     doc.IssuedAt.Format(time.RFC3339),
		Issuer: dto.IssuerInfo{
			RUT:      doc.EmitterRUT,
			Name:     doc.EmitterName,
			Activity: doc.EmitterActivity,
			Address:  doc.EmitterAddress,
			Commune:  doc.EmitterCommune,
		},
		Recipient: dto.RecipientInfo{
			RUT:      doc.ReceiverRUT,
			Name:     doc.ReceiverName,
			Activity: doc.ReceiverActivity,
			Address:  doc.ReceiverAddress,
			Commune:  doc.ReceiverCommune,
			City:     doc.ReceiverCity,
			Email:    doc.ReceiverEmail,
		},
		NetAmount:     doc.NetAmount,
		ExemptAmount:  doc.ExemptAmount,
		VATRate:       doc.VATRate,
		VATAmount:     doc.VATAmount,
		TotalAmount:   doc.TotalAmount,
		Status:        doc.Status,
		TrackID:       doc.TrackID,
		StatusDetail:  doc.StatusDetail,
		XMLPath:       doc.XMLPath,
		PDFPath:       doc.PDFPath,
		RefDTEID:      doc.RefDTEID,
		RefReasonCode: doc.RefReasonCode,
		RefReason:     doc.RefReason,
		SaleID:        doc.SaleID,
		Details:       make([]dto.DTELineResponse, 0, len(details)),
	}
	if doc.SentAt != nil {
		resp.SentAt = doc.SentAt.Format(time.RFC3339)
	}
	if doc.AckedAt != nil {
		resp.AckedAt = doc.AckedAt.Format(time.RFC3339)
	}
	for _, d := range details {
		resp.Details = append(resp.Details, dto.DTELineResponse{
			LineNumber:     d.LineNumber,
			Code:           d.ProductCode,
			Name:           d.Name,
			Description:    d.Description,
			Quantity:       d.Quantity,
			Unit:           d.Unit,
			UnitPrice:      d.UnitPrice,
			DiscountPct:    d.DiscountPct,
			DiscountAmount: d.DiscountAmount,
			Amount:         d.Amount,
			Exempt:         d.Exempt,
			ProductID:      d.ProductID,
		})
	}
	return resp
}
