package model

// Intent はユーザーメッセージから分類された目的を表す。
// どのハンドラーがメッセージを処理するかを決定する。
type Intent string

const (
	// IntentBalance は残高照会の意図を示す。
	IntentBalance Intent = "balance"
	// IntentTransactions は取引履歴照会の意図を示す。
	IntentTransactions Intent = "transactions"
	// IntentLoan はローンシミュレーション開始の意図を示す。
	IntentLoan Intent = "loan"
	// IntentGeneral は分類不能な自由質問を示す。
	// 外部の言語生成コラボレーターに委譲される。
	IntentGeneral Intent = "general"
)
