// Package ledger は取引台帳のドメインロジックを提供する。
//
// 台帳は追記専用で、すべての変更（取引挿入＋残高更新）は
// リポジトリ層で単一トランザクションとして実行される。
// 任意のユーザーについて、残高は常にそのユーザーの全取引金額の合計と一致する。
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/bankman/internal/model"
	"github.com/hitoshi/bankman/internal/repository"
)

// demoMovement はデモ口座の初期取引1件を表す。
type demoMovement struct {
	description string
	amount      decimal.Decimal
}

// demoMovements は新規ユーザー向けのシミュレーション取引。
// SEED_DEMO_TRANSACTIONS が有効な場合のみ、通常の追記経路で適用される。
var demoMovements = []demoMovement{
	{"Depósito inicial", decimal.NewFromInt(10000)},
	{"Compra supermercado", decimal.NewFromInt(-1500)},
	{"Transferencia recibida", decimal.NewFromInt(2500)},
	{"Pago de servicio", decimal.NewFromInt(-2000)},
}

// AppendRecorder は台帳追記をメトリクスとして記録するインターフェース。
type AppendRecorder interface {
	RecordLedgerAppend()
}

// Service は台帳のサービス層。
type Service struct {
	repo     repository.LedgerRepository
	recorder AppendRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.LedgerRepository) *Service {
	return &Service{repo: repo}
}

// WithRecorder は追記メトリクスの記録先を設定したServiceを返す。
func (s *Service) WithRecorder(recorder AppendRecorder) *Service {
	s.recorder = recorder
	return s
}

// Append は取引を台帳に追記し、残高を同時に更新する。
func (s *Service) Append(ctx context.Context, userID, description string, amount decimal.Decimal) (*model.Transaction, error) {
	txn, err := s.repo.AppendTransaction(ctx, userID, description, amount)
	if err != nil {
		return nil, fmt.Errorf("台帳への追記に失敗しました: %w", err)
	}
	if s.recorder != nil {
		s.recorder.RecordLedgerAppend()
	}
	return txn, nil
}

// Balance は現在残高を返す。存在しないユーザーは残高0を返す。
func (s *Service) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("残高の取得に失敗しました: %w", err)
	}
	return balance, nil
}

// Recent は直近の取引を新しい順でlimit件まで返す。副作用はない。
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]model.Transaction, error) {
	txns, err := s.repo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("取引履歴の取得に失敗しました: %w", err)
	}
	return txns, nil
}

// SeedDemo はデモ用の初期取引4件を通常の追記経路で適用する。
// 新規ユーザー作成直後に、設定で有効な場合のみ呼び出される。
func (s *Service) SeedDemo(ctx context.Context, userID string) error {
	for _, mov := range demoMovements {
		if _, err := s.Append(ctx, userID, mov.description, mov.amount); err != nil {
			return fmt.Errorf("デモ取引の投入に失敗しました: %w", err)
		}
	}

	slog.Info("seeded demo transactions",
		slog.String("user_id", userID),
		slog.Int("count", len(demoMovements)),
	)
	return nil
}
