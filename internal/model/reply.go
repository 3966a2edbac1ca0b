package model

import "github.com/shopspring/decimal"

// ReplyKind はオーケストレーターが返す結果記述子の種別を表す。
type ReplyKind string

const (
	// ReplyWelcome は初回接触時の歓迎と認証要求を示す。
	ReplyWelcome ReplyKind = "welcome"
	// ReplyAuthRequired は未認証ユーザーへの認証要求を示す。
	ReplyAuthRequired ReplyKind = "auth_required"
	// ReplyAuthOK は認証成功を示す。
	ReplyAuthOK ReplyKind = "auth_ok"
	// ReplyAuthRejected は誤った暗証番号の拒否を示す。再試行可能。
	ReplyAuthRejected ReplyKind = "auth_rejected"
	// ReplyBalance は残高照会の結果を示す。
	ReplyBalance ReplyKind = "balance"
	// ReplyTransactions は取引履歴照会の結果を示す。
	ReplyTransactions ReplyKind = "transactions"
	// ReplyLoanPromptAmount はローン金額の入力要求を示す。
	ReplyLoanPromptAmount ReplyKind = "loan_prompt_amount"
	// ReplyLoanPromptTerm はローン期間の入力要求を示す。
	ReplyLoanPromptTerm ReplyKind = "loan_prompt_term"
	// ReplyLoanQuote はローンシミュレーションの結果を示す。
	ReplyLoanQuote ReplyKind = "loan_quote"
	// ReplyLoanCancelled はローンフローのキャンセル完了を示す。
	ReplyLoanCancelled ReplyKind = "loan_cancelled"
	// ReplyValidationError は数値入力の検証エラーを示す。フローは維持される。
	ReplyValidationError ReplyKind = "validation_error"
	// ReplyAssistant は言語生成コラボレーターによる自由回答を示す。
	ReplyAssistant ReplyKind = "assistant"
	// ReplyHelp はコマンド一覧と利用例を示す。
	ReplyHelp ReplyKind = "help"
	// ReplyStorageError は永続化の失敗を示すソフトエラー。
	// 対象の操作だけが失敗し、セッション状態は維持される。
	ReplyStorageError ReplyKind = "storage_error"
)

// Reply はオーケストレーターからトランスポート層へ返す結果記述子。
// 整形済みテキストではなく型付きのペイロードを持ち、
// 通貨・ロケールの整形はトランスポート側（presenter）の責務とする。
type Reply struct {
	Kind ReplyKind

	// UserName は welcome / auth_ok で表示名を伝える。
	UserName string

	// Balance は ReplyBalance のときの現在残高。
	Balance decimal.Decimal

	// Transactions は ReplyTransactions のときの履歴（新しい順）。
	Transactions []Transaction

	// Quote は ReplyLoanQuote のときのシミュレーション結果。
	Quote *LoanQuote

	// Text は ReplyAssistant のときの回答本文。
	Text string

	// Err は validation_error / auth_rejected / storage_error の詳細。
	Err *BotError
}
