package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roulette-bot/internal/model"
)

const transactionColumns = `id, user_id, amount, type, description, created_at`

// TransactionRepository is the wager and payout journal.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository instance.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create journals one balance change.
func (r *TransactionRepository) Create(ctx context.Context, userID int64, amount int64, txType string, description *string) (*model.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		INSERT INTO transactions (user_id, amount, type, description, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING `+transactionColumns,
		userID, amount, txType, description,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	tx, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Transaction])
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// GetByUserIDAndType lists a user's entries of one type, newest first.
func (r *TransactionRepository) GetByUserIDAndType(ctx context.Context, userID int64, txType string, limit int) ([]*model.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1 AND type = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`,
		userID, txType, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	txs, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Transaction])
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions: %w", err)
	}
	return txs, nil
}

// NetByTypes sums a user's entries over the given types. A user with no
// entries nets zero.
func (r *TransactionRepository) NetByTypes(ctx context.Context, userID int64, types []string) (int64, error) {
	var net int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::bigint
		FROM transactions
		WHERE user_id = $1 AND type = ANY($2)`,
		userID, types,
	).Scan(&net)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return net, nil
}
