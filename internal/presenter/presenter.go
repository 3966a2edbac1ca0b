// Package presenter は結果記述子(Reply)をユーザー向けのテキストへ整形する。
//
// 数値の丸めはすべてこの層で行う。コアの計算結果は丸めずに受け取り、
// 表示時にのみ小数第2位へ丸める。通貨はアルゼンチン・ペソの慣習
// （千区切り "." 、小数点 ","）で表記する。
package presenter

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/bankman/internal/model"
)

const helpText = "🏦 Banco Bot - Comandos disponibles\n\n" +
	"/start - Iniciar o reiniciar el bot\n" +
	"/saldo - Consultar tu saldo actual\n" +
	"/movimientos - Ver tus últimos movimientos\n" +
	"/prestamo - Simular un préstamo personal\n" +
	"/cancelar - Cancelar el flujo de la simulación de préstamo\n" +
	"/ayuda - Mostrar este mensaje\n\n" +
	"También podés hacerme preguntas como:\n" +
	"- ¿Cuánto tengo en mi cuenta?\n" +
	"- Mostrame los últimos movimientos\n" +
	"- Necesito un préstamo\n" +
	"- ¿Qué tarjetas ofrecen?\n" +
	"- ¿Conviene un plazo fijo?"

// Render はReplyを表示用テキストに変換する。
// 未知の種別はヘルプ表示に落とす。
func Render(reply *model.Reply) string {
	switch reply.Kind {
	case model.ReplyWelcome:
		return fmt.Sprintf("👋 ¡Bienvenido %s! Para comenzar, necesitas autenticarte.\n🔒 Ingresá tu PIN para acceder a tu cuenta:", reply.UserName)
	case model.ReplyAuthRequired:
		return "🔒 Necesitás autenticarte primero con /start."
	case model.ReplyAuthOK:
		return "🔓 ¡Autenticación exitosa!\n\n" + helpText
	case model.ReplyAuthRejected:
		return "❌ PIN incorrecto. Probá de nuevo."
	case model.ReplyBalance:
		return "💰 Tu saldo actual es: " + FormatCurrency(reply.Balance)
	case model.ReplyTransactions:
		return renderTransactions(reply.Transactions)
	case model.ReplyLoanPromptAmount:
		return "💵 Ingresá el monto que necesitás (solo números):"
	case model.ReplyLoanPromptTerm:
		return "📆 Ahora, ingresá el plazo en meses (1-60):"
	case model.ReplyLoanQuote:
		return renderLoanQuote(reply.Quote)
	case model.ReplyLoanCancelled:
		return "❌ Operación cancelada."
	case model.ReplyValidationError:
		return "❌ Valor inválido. Ingresá solo números dentro del rango permitido. Por ejemplo: 100000"
	case model.ReplyAssistant:
		return reply.Text
	case model.ReplyStorageError:
		return "⚠️ Ocurrió un problema al acceder a tus datos. Intentá de nuevo en unos minutos."
	default:
		return helpText
	}
}

func renderTransactions(txns []model.Transaction) string {
	if len(txns) == 0 {
		return "📭 No tenés movimientos recientes."
	}
	var b strings.Builder
	b.WriteString("📄 Tus últimos movimientos:")
	for _, txn := range txns {
		sign := "🔴 -"
		if txn.Amount.IsPositive() {
			sign = "🟢 +"
		}
		b.WriteString("\n")
		b.WriteString(sign)
		b.WriteString(" ")
		b.WriteString(FormatCurrency(txn.Amount.Abs()))
		b.WriteString(" - ")
		b.WriteString(txn.Description)
	}
	return b.String()
}

func renderLoanQuote(quote *model.LoanQuote) string {
	monthlyPct := quote.MonthlyRate.Mul(decimal.NewFromInt(100))
	return "📊 Simulación de préstamo\n\n" +
		fmt.Sprintf("💵 Monto solicitado: %s\n", FormatCurrency(quote.Principal)) +
		fmt.Sprintf("📆 Plazo: %d meses\n", quote.TermMonths) +
		fmt.Sprintf("📈 Tasa anual: %s%%\n", quote.AnnualRate.Round(2)) +
		fmt.Sprintf("📈 Tasa mensual: %s%%\n", monthlyPct.Round(2)) +
		fmt.Sprintf("💰 Cuota mensual: %s\n", FormatCurrency(quote.Installment)) +
		fmt.Sprintf("💰 Total a pagar: %s", FormatCurrency(quote.Total))
}

// FormatCurrency は金額をペソ表記に整形する（例: 1234.56 → "$ 1.234,56"）。
// 小数第2位で四捨五入する。
func FormatCurrency(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString("$ ")
	if negative {
		b.WriteString("-")
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(".")
		}
		b.WriteRune(r)
	}
	b.WriteString(",")
	b.WriteString(fracPart)
	return b.String()
}
