// Package assistant は自由質問向けの言語生成コラボレーターを提供する。
//
// オーケストレーターはIntentGeneralのメッセージだけをここへ委譲する。
// 呼び出しはタイムアウトで制限され、失敗はエラーとして返すが、
// 呼び出し側は固定のフォールバック文に置き換えて利用者へ返す。
// 失敗が状態機械へ伝播することはない。
package assistant

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hitoshi/bankman/internal/model"
	"github.com/hitoshi/bankman/internal/security"
)

// FallbackMessage はコラボレーター失敗時に代わりに返す固定文。
const FallbackMessage = "Lo siento, no puedo responder esa consulta en este momento. Por favor, intenta más tarde."

// systemPrompt は銀行ドメインの回答コンテキスト。
// 商品情報（カード、定期預金、個人ローン）を含み、簡潔な回答を指示する。
const systemPrompt = `Eres un asistente bancario inteligente. Responde preguntas sobre servicios bancarios con información precisa.
La entidad para la que trabajas ofrece:

Tarjetas de crédito:
- Visa Classic: Límite de $200,000, 3 cuotas sin interés
- Visa Gold: Límite de $500,000, 6 cuotas sin interés, seguro de viaje
- Mastercard Platinum: Límite de $1,000,000, 12 cuotas sin interés, acceso a salas VIP

Plazos fijos:
- Plazo fijo tradicional: Tasa nominal anual del 43% a 30 días
- Plazo fijo UVA: Inflación + 1% anual, mínimo 90 días

Préstamos personales:
- Tasa para clientes: 55% TEA
- Monto máximo: $5,000,000
- Plazo máximo: 60 meses

Da respuestas concisas y claras. Si no estás seguro de algo, indica que consultarán con un asesor.`

// Responder は言語生成コラボレーターのインターフェース。
type Responder interface {
	// Respond は自由質問への回答を返す。
	// 失敗時はエラーを返し、回答の代替は呼び出し側が行う。
	Respond(ctx context.Context, userText string) (string, error)
}

// Client はOpenAI Chat Completionを使用したResponderの実装。
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	sanitizer security.ReplySanitizerService
}

// NewClient はClientを生成する。
func NewClient(apiKey, chatModel string, maxTokens int, timeout time.Duration) *Client {
	return &Client{
		client:    openai.NewClient(apiKey),
		model:     chatModel,
		maxTokens: maxTokens,
		timeout:   timeout,
		sanitizer: security.NewReplySanitizer(),
	}
}

// Respond は銀行コンテキストを添えて質問に回答させる。
// 呼び出しはtimeoutで制限され、タイムアウト・API失敗・空応答は
// すべてCOLLABORATOR_FAILUREとして返す。
// 応答はトランスポートに渡る前にサニタイズされる。
func (c *Client) Respond(ctx context.Context, userText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
	})
	if err != nil {
		return "", model.NewCollaboratorError(err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", model.NewCollaboratorError("empty completion")
	}

	return c.sanitizer.Sanitize(resp.Choices[0].Message.Content), nil
}

// Disabled はAPIキー未設定時に使うResponder。常に失敗を返すため、
// 呼び出し側は常にフォールバック文を返すことになる。
type Disabled struct{}

// Respond は常にCOLLABORATOR_FAILUREを返す。
func (Disabled) Respond(ctx context.Context, userText string) (string, error) {
	return "", model.NewCollaboratorError("assistant is not configured")
}

// compile-time interface checks
var (
	_ Responder = (*Client)(nil)
	_ Responder = Disabled{}
)
