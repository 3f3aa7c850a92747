package dto

import "github.com/shopspring/decimal"

// IssuerInfo identificación del emisor. La entrega el llamador (gateway) como
// parte del contexto de la petición; el motor no la busca en la base.
type IssuerInfo struct {
	RUT      string `json:"rut"`
	Name     string `json:"name"`
	Activity string `json:"activity,omitempty"`
	Address  string `json:"address,omitempty"`
	Commune  string `json:"commune,omitempty"`
}

// RecipientInfo identificación del receptor. Obligatoria solo para facturas
// y notas; las boletas a consumidor final pueden omitirla.
type RecipientInfo struct {
	RUT      string `json:"rut,omitempty"`
	Name     string `json:"name,omitempty"`
	Activity string `json:"activity,omitempty"`
	Address  string `json:"address,omitempty"`
	Commune  string `json:"commune,omitempty"`
	City     string `json:"city,omitempty"`
	Email    string `json:"email,omitempty"`
}

// EmitLineRequest línea valorizada de la petición de emisión. DiscountPct y
// DiscountAmount son excluyentes.
type EmitLineRequest struct {
	Code           string          `json:"code,omitempty"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit,omitempty"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountPct    decimal.Decimal `json:"discount_pct,omitempty"`
	DiscountAmount int64           `json:"discount_amount,omitempty"`
	Exempt         bool            `json:"exempt,omitempty"`
	ProductID      string          `json:"product_id,omitempty"`
}

// EmitDTERequest body para POST /api/dte.
type EmitDTERequest struct {
	DocumentType int               `json:"document_type"`
	Issuer       IssuerInfo        `json:"issuer"`
	Recipient    RecipientInfo     `json:"recipient"`
	Lines        []EmitLineRequest `json:"lines"`
	// SaleID enlaza el documento con la venta que lo originó (opcional).
	SaleID string `json:"sale_id,omitempty"`
	// Referencia a un documento anterior (obligatoria en notas).
	RefDTEID      string `json:"ref_dte_id,omitempty"`
	RefReasonCode int    `json:"ref_reason_code,omitempty"`
	RefReason     string `json:"ref_reason,omitempty"`
}

// DTELineResponse línea de detalle en la respuesta, con el monto calculado.
type DTELineResponse struct {
	LineNumber     int             `json:"line_number"`
	Code           string          `json:"code,omitempty"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountPct    decimal.Decimal `json:"discount_pct,omitempty"`
	DiscountAmount int64           `json:"discount_amount,omitempty"`
	Amount         int64           `json:"amount"`
	Exempt         bool            `json:"exempt,omitempty"`
	ProductID      string          `json:"product_id,omitempty"`
}

// DTEResponse documento completo para emisión y consulta.
type DTEResponse struct {
	ID           string        `json:"id"`
	DocumentType int           `json:"document_type"`
	Folio        int64         `json:"folio"`
	IssuedAt     string        `json:"issued_at"`
	Issuer       IssuerInfo    `json:"issuer"`
	Recipient    RecipientInfo `json:"recipient"`

	NetAmount    int64           `json:"net_amount"`
	ExemptAmount int64           `json:"exempt_amount"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	VATAmount    int64           `json:"vat_amount"`
	TotalAmount  int64           `json:"total_amount"`

	Status       string `json:"status"`
	TrackID      string `json:"track_id,omitempty"`
	StatusDetail string `json:"status_detail,omitempty"`
	SentAt       string `json:"sent_at,omitempty"`
	AckedAt      string `json:"acked_at,omitempty"`
	XMLPath      string `json:"xml_path,omitempty"`
	PDFPath      string `json:"pdf_path,omitempty"`

	RefDTEID      string `json:"ref_dte_id,omitempty"`
	RefReasonCode int    `json:"ref_reason_code,omitempty"`
	RefReason     string `json:"ref_reason,omitempty"`
	SaleID        string `json:"sale_id,omitempty"`

	Details []DTELineResponse `json:"details"`
}

// DTEListResponse página de documentos.
type DTEListResponse struct {
	Items []DTEResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// DTEStatusResponse respuesta ligera para el polling de estado.
type DTEStatusResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	TrackID      string `json:"track_id,omitempty"`
	StatusDetail string `json:"status_detail,omitempty"`
	SentAt       string `json:"sent_at,omitempty"`
	AckedAt      string `json:"acked_at,omitempty"`
}

// UpdateDTEStatusRequest body para PATCH /api/dte/:id/status. Lo usa el
// flujo de firma/envío (fuera de este motor) para escribir el resultado.
type UpdateDTEStatusRequest struct {
	Status       string `json:"status"`
	TrackID      string `json:"track_id,omitempty"`
	StatusDetail string `json:"status_detail,omitempty"`
	XMLPath      string `json:"xml_path,omitempty"`
	PDFPath      string `json:"pdf_path,omitempty"`
}
