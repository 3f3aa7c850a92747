package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores del motor de facturación electrónica (SII).
var (
	// ErrInvalidCAF indica que el XML de autorización de folios no se pudo parsear
	// o le faltan campos obligatorios.
	ErrInvalidCAF = errors.New("archivo CAF inválido")

	// ErrDuplicateCAF indica que ya existe un CAF registrado para la misma empresa
	// y tipo de documento que comienza en el mismo folio.
	ErrDuplicateCAF = errors.New("ya existe un CAF registrado con el mismo rango de folios")

	// ErrNoFolios indica que ningún CAF activo y sin agotar cubre el tipo de
	// documento solicitado. Se resuelve cargando un nuevo CAF.
	ErrNoFolios = errors.New("no hay folios disponibles para el tipo de documento")

	// ErrCAFExpired indica que el CAF elegible está vencido. A diferencia de
	// ErrNoFolios el rango aún tiene folios, pero el SII ya no los autoriza:
	// debe solicitarse un CAF nuevo.
	ErrCAFExpired = errors.New("el CAF vigente está vencido; solicite un nuevo CAF al SII")
)
