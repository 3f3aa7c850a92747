package dto

// RegisterCAFRequest body para POST /api/caf. El XML viene tal como lo
// descargó el contribuyente desde el SII.
type RegisterCAFRequest struct {
	XML string `json:"xml"`
}

// CAFResponse proyección de un CAF registrado. No expone el material de
// llaves ni el XML original.
type CAFResponse struct {
	ID                string `json:"id"`
	DocumentType      int    `json:"document_type"`
	FolioStart        int64  `json:"folio_start"`
	FolioEnd          int64  `json:"folio_end"`
	CurrentFolio      int64  `json:"current_folio"`
	Available         int64  `json:"available"`
	AuthorizationDate string `json:"authorization_date"`
	ExpirationDate    string `json:"expiration_date,omitempty"`
	IsActive          bool   `json:"is_active"`
	Exhausted         bool   `json:"exhausted"`
	CreatedAt         string `json:"created_at"`
}

// FolioAvailability folios restantes para un tipo de documento.
type FolioAvailability struct {
	DocumentType int    `json:"document_type"`
	Name         string `json:"name"`
	Available    int64  `json:"available"`
}
