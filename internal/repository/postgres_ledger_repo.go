package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/bankman/internal/model"
)

// PostgresLedgerRepo はPostgreSQLを使用した取引台帳リポジトリ。
type PostgresLedgerRepo struct {
	db *sql.DB
}

// NewPostgresLedgerRepo はPostgresLedgerRepoを生成する。
func NewPostgresLedgerRepo(db *sql.DB) *PostgresLedgerRepo {
	return &PostgresLedgerRepo{db: db}
}

// AppendTransaction は取引の挿入と残高更新を単一トランザクションで行う。
// 残高は balance = balance + $1 のアトミック加算で更新するため、
// 同一ユーザーへの並行追記でもlost updateが起きない。
func (r *PostgresLedgerRepo) AppendTransaction(ctx context.Context, userID, description string, amount decimal.Decimal) (*model.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txn := &model.Transaction{
		UserID:      userID,
		Description: description,
		Amount:      amount,
		OccurredAt:  time.Now(),
	}

	// 取引を挿入
	err = tx.QueryRowContext(ctx,
		`INSERT INTO transactions (user_id, description, amount, occurred_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		txn.UserID, txn.Description, txn.Amount, txn.OccurredAt,
	).Scan(&txn.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	// 残高を同一トランザクション内で加算
	result, err := tx.ExecContext(ctx,
		`UPDATE users SET balance = balance + $1 WHERE user_id = $2`,
		txn.Amount, txn.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("user not found: %s", userID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

// GetBalance は現在残高を返す。存在しないユーザーは残高0を返す。
func (r *PostgresLedgerRepo) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT balance FROM users WHERE user_id = $1`,
		userID,
	).Scan(&balance)

	if err == sql.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}

// ListRecent は直近の取引をoccurred_at降順（同時刻はid降順）でlimit件まで返す。
func (r *PostgresLedgerRepo) ListRecent(ctx context.Context, userID string, limit int) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, description, amount, occurred_at
		 FROM transactions
		 WHERE user_id = $1
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Description, &txn.Amount, &txn.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}

// compile-time interface check
var _ LedgerRepository = (*PostgresLedgerRepo)(nil)
