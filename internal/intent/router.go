// Package intent はユーザーメッセージのキーワードベース意図分類を提供する。
//
// 分類は決定的な純粋関数で、ネットワークにもストレージにもアクセスしない。
// キーワードに基づく分類以上の自然言語理解は行わない。
package intent

import (
	"strings"

	"github.com/hitoshi/bankman/internal/model"
)

// キーワード集合はスペイン語（es-AR）の語彙に英語の同義語を
// 加えたもの。部分一致・大文字小文字無視で評価する。
var (
	balanceKeywords = []string{
		"saldo", "tengo", "cuánto", "cuanto", "cuenta", "disponible",
		"balance", "how much",
	}
	transactionsKeywords = []string{
		"movimientos", "transacciones", "gastos", "últimos", "ultimos", "recientes",
		"transactions", "recent", "history",
	}
	loanKeywords = []string{
		"préstamo", "prestamo", "crédito", "credito", "solicitar", "pedir", "necesito dinero",
		"loan", "borrow",
	}
)

// Classify はメッセージ本文を固定の意図のいずれかに分類する。
// 優先順位は BALANCE > TRANSACTIONS > LOAN の固定順で、最初の一致で確定する。
// どのキーワードにも一致しない場合はIntentGeneralを返し、
// 外部の言語生成コラボレーターに委譲される。
// 同一入力に対して常に同一の結果を返す。
func Classify(text string) model.Intent {
	lower := strings.ToLower(text)

	if containsAny(lower, balanceKeywords) {
		return model.IntentBalance
	}
	if containsAny(lower, transactionsKeywords) {
		return model.IntentTransactions
	}
	if containsAny(lower, loanKeywords) {
		return model.IntentLoan
	}

	return model.IntentGeneral
}

// containsAny はtextがkeywordsのいずれかを部分文字列として含むかを返す。
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
