package loan

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/bankman/internal/model"
)

// 代表シナリオ: 元本100000、24ヶ月、ロイヤルティ0。
// 年利55.0%、月利約3.72%、月額約6371.78、総額約152922.70。
func TestQuote_ReferenceScenario(t *testing.T) {
	q, err := Quote("user-1", decimal.NewFromInt(100000), 24, 0)
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}

	if !q.AnnualRate.Equal(decimal.NewFromFloat(55.0)) {
		t.Errorf("AnnualRate = %s, want 55.0", q.AnnualRate)
	}

	// TEM = 1.55^(1/12) - 1 ≈ 0.0371963
	wantMonthly := decimal.NewFromFloat(0.0371963)
	if q.MonthlyRate.Sub(wantMonthly).Abs().GreaterThan(decimal.NewFromFloat(0.000001)) {
		t.Errorf("MonthlyRate = %s, want ≈%s", q.MonthlyRate, wantMonthly)
	}

	wantInstallment := decimal.NewFromFloat(6371.78)
	if q.Installment.Sub(wantInstallment).Abs().GreaterThan(decimal.NewFromInt(1)) {
		t.Errorf("Installment = %s, want ≈%s (±1)", q.Installment, wantInstallment)
	}

	wantTotal := decimal.NewFromFloat(152922.70)
	if q.Total.Sub(wantTotal).Abs().GreaterThan(decimal.NewFromInt(1)) {
		t.Errorf("Total = %s, want ≈%s (±1)", q.Total, wantTotal)
	}
}

// 総返済額 = 月額 × 期間 が常に成り立つこと（丸め許容内）を検証
func TestQuote_TotalEqualsInstallmentTimesTerm(t *testing.T) {
	cases := []struct {
		principal int64
		term      int
		loyalty   int
	}{
		{100000, 24, 0},
		{5_000_000, 60, 8},
		{1, 1, 0},
		{250000, 12, 100},
		{999999, 36, 3},
	}

	tolerance := decimal.NewFromFloat(0.01)
	for _, c := range cases {
		q, err := Quote("u", decimal.NewFromInt(c.principal), c.term, c.loyalty)
		if err != nil {
			t.Fatalf("Quote(%d, %d, %d) returned error: %v", c.principal, c.term, c.loyalty, err)
		}
		product := q.Installment.Mul(decimal.NewFromInt(int64(c.term)))
		if q.Total.Sub(product).Abs().GreaterThan(tolerance) {
			t.Errorf("principal=%d term=%d: Total = %s, Installment*term = %s", c.principal, c.term, q.Total, product)
		}
	}
}

// 割引がロイヤルティに対して単調非減少かつ10.0%で頭打ちになり、
// 最終年利が常に45.0%以上であることを検証
func TestQuote_DiscountMonotonicAndCapped(t *testing.T) {
	principal := decimal.NewFromInt(100000)
	floor := decimal.NewFromFloat(45.0)

	prev := decimal.NewFromFloat(55.0)
	for loyalty := 0; loyalty <= 40; loyalty++ {
		q, err := Quote("u", principal, 12, loyalty)
		if err != nil {
			t.Fatalf("Quote(loyalty=%d) returned error: %v", loyalty, err)
		}
		if q.AnnualRate.GreaterThan(prev) {
			t.Errorf("loyalty=%d: AnnualRate %s increased over previous %s", loyalty, q.AnnualRate, prev)
		}
		if q.AnnualRate.LessThan(floor) {
			t.Errorf("loyalty=%d: AnnualRate %s below floor 45.0", loyalty, q.AnnualRate)
		}
		prev = q.AnnualRate
	}

	// 割引上限: ロイヤルティ20以降は45.0%で固定
	q20, _ := Quote("u", principal, 12, 20)
	q40, _ := Quote("u", principal, 12, 40)
	if !q20.AnnualRate.Equal(floor) || !q40.AnnualRate.Equal(floor) {
		t.Errorf("capped rates = %s / %s, want 45.0", q20.AnnualRate, q40.AnnualRate)
	}
}

// 検証違反がVALIDATION_ERRORを返し、計算結果を返さないことを検証
func TestQuote_Validation(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		term      int
	}{
		{"元本が上限超過", decimal.NewFromInt(6_000_000), 24},
		{"元本が0", decimal.Zero, 24},
		{"元本が負", decimal.NewFromInt(-100), 24},
		{"期間が0", decimal.NewFromInt(100000), 0},
		{"期間が上限超過", decimal.NewFromInt(100000), 61},
		{"期間が負", decimal.NewFromInt(100000), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Quote("u", tt.principal, tt.term, 0)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if q != nil {
				t.Errorf("expected nil quote, got %+v", q)
			}
			botErr, ok := err.(*model.BotError)
			if !ok {
				t.Fatalf("expected *model.BotError, got %T", err)
			}
			if botErr.Code != model.ErrCodeValidation {
				t.Errorf("Code = %q, want %q", botErr.Code, model.ErrCodeValidation)
			}
		})
	}
}

// 境界値（元本500万ちょうど、期間1および60）が受理されることを検証
func TestQuote_Boundaries(t *testing.T) {
	if _, err := Quote("u", decimal.NewFromInt(5_000_000), 60, 0); err != nil {
		t.Errorf("principal=5000000 term=60 rejected: %v", err)
	}
	if _, err := Quote("u", decimal.NewFromFloat(0.01), 1, 0); err != nil {
		t.Errorf("principal=0.01 term=1 rejected: %v", err)
	}
}

// 負のロイヤルティは0として扱われることを検証
func TestQuote_NegativeLoyaltyTreatedAsZero(t *testing.T) {
	qNeg, err := Quote("u", decimal.NewFromInt(100000), 12, -5)
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}
	qZero, _ := Quote("u", decimal.NewFromInt(100000), 12, 0)
	if !qNeg.AnnualRate.Equal(qZero.AnnualRate) {
		t.Errorf("negative loyalty rate = %s, want %s", qNeg.AnnualRate, qZero.AnnualRate)
	}
}
