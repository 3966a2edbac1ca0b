// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/bankman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Create はユーザーを作成する。残高0、インタラクション0で開始する。
	Create(ctx context.Context, user *model.User) error

	// IncrementInteractions はインタラクションカウンターをSQL側で
	// アトミックにインクリメントし、更新後の値を返す。
	IncrementInteractions(ctx context.Context, id string) (int, error)
}

// LedgerRepository は取引台帳の永続化インターフェース。
type LedgerRepository interface {
	// AppendTransaction は取引の挿入と残高更新を単一トランザクションで行う。
	// 両方の効果は同時に可視になるか、どちらも反映されない。
	// 残高更新は balance = balance + $1 のアトミック加算で行い、
	// 同一ユーザーへの並行追記でも更新が失われない。
	AppendTransaction(ctx context.Context, userID, description string, amount decimal.Decimal) (*model.Transaction, error)

	// GetBalance は現在残高を返す。存在しないユーザーは残高0を返す（エラーにしない）。
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)

	// ListRecent は直近の取引をoccurred_at降順（同時刻はid降順）でlimit件まで返す。
	ListRecent(ctx context.Context, userID string, limit int) ([]model.Transaction, error)
}

// QuoteRepository はローンシミュレーション結果の永続化インターフェース。
type QuoteRepository interface {
	// Save はシミュレーション結果を監査用に保存し、採番されたIDをquoteに書き戻す。
	Save(ctx context.Context, quote *model.LoanQuote) error
}