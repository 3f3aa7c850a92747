package billing

import (
	"context"

	"github.com/facturasur/dte-engine/internal/domain/dte"
	"github.com/facturasur/dte-engine/internal/domain/repository"
)

// BillingTxRunner ejecuta fn con repositorios atados a una transacción única.
// Si fn retorna error se hace rollback completo: el folio consumido y el
// documento escrito suceden ambos o ninguno.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		cafRepo repository.CAFRepository,
		dteRepo repository.DTERepository,
	) error) error
}

// CAFParser parsea el XML de autorización de folios del SII. Puro e
// idempotente; la persistencia y el chequeo de duplicados van por separado.
type CAFParser interface {
	Parse(raw []byte) (*dte.CAFData, error)
}
