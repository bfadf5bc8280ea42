package txmanager

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"fleetbackend/core"
	dbtx "fleetbackend/db/tx"
)

// TransactionManager runs use case steps (driver onboarding) inside one Postgres transaction
type TransactionManager struct {
	db *sqlx.DB
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(db *sqlx.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// WithTransaction executes fn within a database transaction.
// Nested calls reuse the outer transaction.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	// Already in a transaction: the outer call owns commit and rollback
	if _, ok := dbtx.TransactionFromContext(ctx); ok {
		return fn(ctx)
	}

	// Correlates the log lines of one transaction
	txID := core.NewID("tx")
	log.Printf("📋 Starting transaction %s", txID)

	tx, err := tm.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Panic protection with defer
	defer func() {
		if r := recover(); r != nil {
			log.Printf("📋 Transaction %s panic detected, rolling back: %v", txID, r)
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Printf("📋 Failed to rollback transaction %s after panic: %v", txID, rollbackErr)
			}
			panic(r) // Re-panic so the caller's recovery still sees it
		}
	}()

	// Repositories pick the transaction up through dbtx.GetTransactional
	if err := fn(dbtx.WithTransaction(ctx, tx)); err != nil {
		log.Printf("📋 Transaction %s function returned error, rolling back: %v", txID, err)
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rollbackErr)
		}
		return err
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction %s: %w", txID, err)
	}

	log.Printf("📋 Transaction %s completed successfully", txID)
	return nil
}
