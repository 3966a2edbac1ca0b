// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User は口座を持つ利用者を表す。
// Balanceは常にそのユーザーの全取引金額の合計と一致する（台帳不変条件）。
// Interactionsはメッセージ処理のたびに単調増加し、ローン金利の優遇判定に使われる。
type User struct {
	ID           string
	Name         string
	Balance      decimal.Decimal
	RegisteredAt time.Time
	Interactions int
}

// Transaction は口座の入出金1件を表す。
// 一度書き込まれた取引は不変で、台帳への追記のみ（append-only）。
// Amountは符号付き（入金は正、出金は負）。
type Transaction struct {
	ID          int64
	UserID      string
	Description string
	Amount      decimal.Decimal
	OccurredAt  time.Time
}

// LoanQuote はローンシミュレーションの結果1件を表す。
// 監査用に保存されるwrite-onceレコードで、保存後に再計算されることはない。
// 常にLoanCalculatorがシミュレーション時点で新規に導出する。
type LoanQuote struct {
	ID          int64
	UserID      string
	Principal   decimal.Decimal
	TermMonths  int
	AnnualRate  decimal.Decimal
	MonthlyRate decimal.Decimal
	Installment decimal.Decimal
	Total       decimal.Decimal
	QuotedAt    time.Time
}
