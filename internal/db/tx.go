package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"assettrack/internal/lifecycle"
	"assettrack/internal/types"
)

// TxManager implements lifecycle.TxRunner using pgxpool transactions.
// The repositories handed to the callback share one pgx.Tx, so a
// transition's asset update, repair row, and audit entry commit or roll
// back together.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a TxManager over the given pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// RunInTx begins a transaction, runs fn with transaction-scoped stores,
// and commits if fn returns nil. Any error rolls the transaction back.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context, stores lifecycle.Stores) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stores := lifecycle.Stores{
		Assets:  NewAssetRepository(tx),
		Repairs: NewRepairRepository(tx),
		Audit:   NewAuditRepository(tx),
	}
	if err := fn(ctx, stores); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to commit transaction", err)
	}
	return nil
}
