package dte

import "time"

// CAFData es el resultado de parsear un archivo CAF (Código de Autorización de
// Folios) emitido por el SII. Es un valor puro: el parser no persiste nada y
// la verificación de rangos duplicados ocurre en la capa de aplicación.
type CAFData struct {
	DocumentType      DocumentType
	FolioStart        int64
	FolioEnd          int64
	AuthorizationDate time.Time
	// ExpirationDate es opcional: CAF antiguos no traen fecha de vencimiento.
	ExpirationDate *time.Time

	// Identificación del emisor autorizado (nodos RE y RS).
	EmitterRUT  string
	EmitterName string

	// Llave pública RSA del CAF (nodos RSAPK/M y RSAPK/E, base64).
	Modulus  string
	Exponent string

	// Material de llaves embebido (RSASK / RSAPUBK). Opcional; se usa después
	// para timbrar el documento, fuera de este motor.
	PrivateKey string
	PublicKey  string

	// RawXML conserva el CAF original tal como lo entregó el SII.
	RawXML string
}
