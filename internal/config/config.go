package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Auth
	// AccessPIN は全ユーザー共通の固定暗証番号。
	// 試行回数制限は行わない。
	AccessPIN string

	// Assistant
	OpenAIAPIKey     string
	AssistantModel   string
	AssistantTimeout time.Duration
	AssistantMaxTokens int

	// Ledger
	// SeedDemoTransactions が真の場合、新規ユーザー作成時に
	// デモ用の4件の取引を通常の台帳経路で追記する。
	SeedDemoTransactions bool
	RecentTxLimit        int

	// Rate Limit
	RateLimitPerMin int

	// Server
	ServerPort string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// OPENAI_API_KEYは任意で、未設定の場合アシスタントは常に
// フォールバック応答を返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.AccessPIN = os.Getenv("ACCESS_PIN")
	if cfg.AccessPIN == "" {
		missing = append(missing, "ACCESS_PIN")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AssistantModel = getEnvString("ASSISTANT_MODEL", "gpt-3.5-turbo")
	cfg.AssistantTimeout = getEnvDuration("ASSISTANT_TIMEOUT", 10*time.Second)
	cfg.AssistantMaxTokens = getEnvInt("ASSISTANT_MAX_TOKENS", 200)
	cfg.SeedDemoTransactions = getEnvBool("SEED_DEMO_TRANSACTIONS", false)
	cfg.RecentTxLimit = getEnvInt("RECENT_TX_LIMIT", 5)
	cfg.RateLimitPerMin = getEnvInt("RATE_LIMIT_PER_MIN", 60)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
