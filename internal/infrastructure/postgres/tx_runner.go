package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facturasur/dte-engine/internal/application/billing"
	"github.com/facturasur/dte-engine/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Es la
// frontera de atomicidad de la emisión: el avance del folio y la escritura
// del documento comparten la misma transacción, y el SELECT ... FOR UPDATE
// del CAF se libera en el Commit/Rollback.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunBilling inicia una transacción, ejecuta fn con repositorios atados a la
// tx y hace Commit si fn retorna nil; cualquier error hace Rollback completo.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	cafRepo repository.CAFRepository,
	dteRepo repository.DTERepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cafRepo := NewCAFRepository(tx)
	dteRepo := NewDTERepository(tx)

	if err := fn(cafRepo, dteRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
