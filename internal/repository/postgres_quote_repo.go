package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bankman/internal/model"
)

// PostgresQuoteRepo はPostgreSQLを使用したローンシミュレーション結果リポジトリ。
type PostgresQuoteRepo struct {
	db *sql.DB
}

// NewPostgresQuoteRepo はPostgresQuoteRepoを生成する。
func NewPostgresQuoteRepo(db *sql.DB) *PostgresQuoteRepo {
	return &PostgresQuoteRepo{db: db}
}

// Save はシミュレーション結果を監査用に保存する。
// 採番されたIDをquoteに書き戻す。保存後の更新は行わない（write-once）。
func (r *PostgresQuoteRepo) Save(ctx context.Context, quote *model.LoanQuote) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO loan_quotes (user_id, principal, term_months, annual_rate, monthly_rate, installment, total, quoted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		quote.UserID, quote.Principal, quote.TermMonths, quote.AnnualRate,
		quote.MonthlyRate, quote.Installment, quote.Total, quote.QuotedAt,
	).Scan(&quote.ID)
	if err != nil {
		return fmt.Errorf("failed to save loan quote: %w", err)
	}
	return nil
}

// compile-time interface check
var _ QuoteRepository = (*PostgresQuoteRepo)(nil)
