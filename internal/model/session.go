package model

import "github.com/shopspring/decimal"

// Flow はユーザーごとの進行中の会話フローを表す。
// 同時にアクティブなフローはユーザーにつき1つだけ。
type Flow string

const (
	// FlowNone はフローが進行していない状態を示す。
	FlowNone Flow = "none"
	// FlowAwaitingLoanAmount はローン金額の入力待ち状態を示す。
	FlowAwaitingLoanAmount Flow = "awaiting_loan_amount"
	// FlowAwaitingLoanTerm はローン期間の入力待ち状態を示す。
	FlowAwaitingLoanTerm Flow = "awaiting_loan_term"
)

// Session はユーザーごとの認証状態と会話フローを保持する。
// 初回メッセージ時に生成され、プロセスの生存期間中メモリに保持される。
// 明示的なキャンセルまたはプロセス再起動でのみリセットされる。
type Session struct {
	UserID        string
	Authenticated bool
	Flow          Flow

	// PendingPrincipal はローンフロー中に入力済みの金額を保持する。
	// FlowAwaitingLoanTerm のときのみ有効。
	PendingPrincipal decimal.Decimal
}
