package assistant

import (
	"context"
	"testing"

	"github.com/hitoshi/bankman/internal/model"
)

// Disabledが常にCOLLABORATOR_FAILUREを返すことを検証
func TestDisabled_AlwaysFails(t *testing.T) {
	var r Responder = Disabled{}

	text, err := r.Respond(context.Background(), "¿Qué tarjetas ofrecen?")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}

	botErr, ok := err.(*model.BotError)
	if !ok {
		t.Fatalf("expected *model.BotError, got %T", err)
	}
	if botErr.Code != model.ErrCodeCollaborator {
		t.Errorf("Code = %q, want %q", botErr.Code, model.ErrCodeCollaborator)
	}
}

// フォールバック文が空でないことを検証（置き換え先として常に利用可能）
func TestFallbackMessage_NotEmpty(t *testing.T) {
	if FallbackMessage == "" {
		t.Fatal("FallbackMessage must not be empty")
	}
}

// NewClientが設定を保持して初期化されることを検証
func TestNewClient_Initializes(t *testing.T) {
	c := NewClient("test-key", "gpt-3.5-turbo", 200, 0)
	if c == nil {
		t.Fatal("expected non-nil client")
	}
	if c.model != "gpt-3.5-turbo" {
		t.Errorf("model = %q, want gpt-3.5-turbo", c.model)
	}
	if c.sanitizer == nil {
		t.Error("expected sanitizer to be set")
	}
}
