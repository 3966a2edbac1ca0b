package middleware

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testRateLimiterConfig(burst int) RateLimiterConfig {
	return RateLimiterConfig{
		MessagesRate:    rate.Limit(float64(burst) / 60.0),
		MessagesBurst:   burst,
		CleanupInterval: time.Hour,
	}
}

// バースト分までは許可され、超過分が拒否されることを検証
func TestRateLimiter_AllowUpToBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(3))
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("user-1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("user-1") {
		t.Error("request beyond burst should be denied")
	}
}

// ユーザーごとに独立したリミッターが使われることを検証
func TestRateLimiter_PerUserIsolation(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1))
	defer rl.Stop()

	if !rl.Allow("user-1") {
		t.Fatal("user-1 first request should be allowed")
	}
	if rl.Allow("user-1") {
		t.Error("user-1 second request should be denied")
	}
	if !rl.Allow("user-2") {
		t.Error("user-2 must not be affected by user-1's limit")
	}

	if got := rl.LimiterCount(); got != 2 {
		t.Errorf("LimiterCount = %d, want 2", got)
	}
}

// 並行アクセスでリミッターが1ユーザー1つに収まることを検証
func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1000))
	defer rl.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rl.Allow("user-1")
		}()
	}
	wg.Wait()

	if got := rl.LimiterCount(); got != 1 {
		t.Errorf("LimiterCount = %d, want 1", got)
	}
}

// 429レスポンスの形式とRetry-Afterヘッダーを検証
func TestRateLimiter_WriteRateLimitResponse(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(60))
	defer rl.Stop()

	rec := httptest.NewRecorder()
	rl.WriteRateLimitResponse(rec)

	if rec.Code != 429 {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}

// クリーンアップが古いエントリだけを削除することを検証
func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		MessagesRate:    rate.Limit(1),
		MessagesBurst:   1,
		CleanupInterval: 10 * time.Millisecond,
	})
	defer rl.Stop()

	rl.Allow("user-1")

	// TTL(CleanupInterval*2)を人工的に超過させる
	rl.mu.Lock()
	rl.limiters["user-1"].lastAccess = time.Now().Add(-time.Minute)
	rl.mu.Unlock()

	rl.cleanup()

	if got := rl.LimiterCount(); got != 0 {
		t.Errorf("LimiterCount after cleanup = %d, want 0", got)
	}
}
