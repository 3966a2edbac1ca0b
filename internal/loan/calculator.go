// Package loan はローンの償還シミュレーション計算を提供する。
//
// 計算は状態を持たない純粋関数で、結果のLoanQuoteを永続化するのは
// 呼び出し側の責務。金額はdecimalで扱い、2桁への丸めは表示時のみ行う。
package loan

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/bankman/internal/model"
)

const (
	// baseAnnualRate は基準となる年間実効金利（TEA、%）。
	baseAnnualRate = 55.0
	// discountPerPoint はロイヤルティ1ポイントあたりの金利割引（%）。
	discountPerPoint = 0.5
	// maxDiscount は割引の上限（%）。最終金利は45.0%を下回らない。
	maxDiscount = 10.0
	// minTermMonths / maxTermMonths は期間の許容範囲（月）。
	minTermMonths = 1
	maxTermMonths = 60
)

// maxPrincipal は貸付金額の上限。
var maxPrincipal = decimal.NewFromInt(5_000_000)

// ValidatePrincipal は貸付金額が許容範囲内かを検証する。
// 会話フロー側が金額入力の時点で同じ境界を適用できるよう公開している。
func ValidatePrincipal(principal decimal.Decimal) error {
	if principal.LessThanOrEqual(decimal.Zero) {
		return model.NewValidationError("金額は0より大きい必要があります")
	}
	if principal.GreaterThan(maxPrincipal) {
		return model.NewValidationError(fmt.Sprintf("金額の上限は%sです", maxPrincipal.StringFixed(0)))
	}
	return nil
}

// ValidateTerm は期間が許容範囲内かを検証する。
func ValidateTerm(termMonths int) error {
	if termMonths < minTermMonths || termMonths > maxTermMonths {
		return model.NewValidationError(fmt.Sprintf("期間は%d〜%dヶ月の範囲で指定してください", minTermMonths, maxTermMonths))
	}
	return nil
}

// Quote は(元本, 期間, ロイヤルティシグナル)から償還シミュレーションを導出する。
//
// 計算手順:
//  1. 割引 = min(loyalty * 0.5, 10.0)
//  2. 最終年利 = 55.0 - 割引
//  3. 月利（TEM） = (1 + 年利/100)^(1/12) - 1 （複利換算）
//  4. 月額 = 元本 * 月利 * (1+月利)^期間 / ((1+月利)^期間 - 1)
//  5. 総返済額 = 月額 * 期間
//
// 検証違反（元本が0以下または500万超、期間が1〜60月の範囲外）は
// *model.BotError（VALIDATION_ERROR）を返し、計算結果は返さない。
// 12乗根の計算のみfloat64を経由し、以降はすべてdecimalで行う。
func Quote(userID string, principal decimal.Decimal, termMonths, loyalty int) (*model.LoanQuote, error) {
	if err := ValidatePrincipal(principal); err != nil {
		return nil, err
	}
	if err := ValidateTerm(termMonths); err != nil {
		return nil, err
	}
	if loyalty < 0 {
		loyalty = 0
	}

	discount := math.Min(float64(loyalty)*discountPerPoint, maxDiscount)
	annualRate := baseAnnualRate - discount

	// TEA→TEM換算。分数乗はdecimalで表現できないためここだけfloat64。
	monthlyRate := decimal.NewFromFloat(math.Pow(1+annualRate/100, 1.0/12.0) - 1)

	one := decimal.NewFromInt(1)
	term := decimal.NewFromInt(int64(termMonths))

	// (1+i)^n は整数乗なのでdecimalで厳密に計算できる
	factor := one.Add(monthlyRate).Pow(term)
	installment := principal.Mul(monthlyRate).Mul(factor).Div(factor.Sub(one))
	total := installment.Mul(term)

	return &model.LoanQuote{
		UserID:      userID,
		Principal:   principal,
		TermMonths:  termMonths,
		AnnualRate:  decimal.NewFromFloat(annualRate),
		MonthlyRate: monthlyRate,
		Installment: installment,
		Total:       total,
		QuotedAt:    time.Now(),
	}, nil
}
