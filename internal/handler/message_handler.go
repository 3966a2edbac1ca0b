package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/bankman/internal/conversation"
	"github.com/hitoshi/bankman/internal/middleware"
	"github.com/hitoshi/bankman/internal/model"
	"github.com/hitoshi/bankman/internal/presenter"
)

// ConversationService はメッセージハンドラーが必要とするサービスインターフェース。
type ConversationService interface {
	// Handle は自由テキストメッセージを1件処理する。
	Handle(ctx context.Context, userID, displayName, text string) *model.Reply
	// HandleCommand は明示的なコマンドイベントを1件処理する。
	HandleCommand(ctx context.Context, userID, displayName string, cmd conversation.Command) *model.Reply
}

// MessageRequest はメッセージ処理リクエストのボディ。
// TextとCommandはどちらか一方を指定する。両方ある場合はCommandを優先する。
type MessageRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Text        string `json:"text"`
	Command     string `json:"command"`
}

// MessageResponse はメッセージ処理レスポンスのボディ。
// Kindは応答種別、Textは表示用に整形済みのテキスト。
type MessageResponse struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// MessageHandler はメッセージ処理のHTTPハンドラー。
type MessageHandler struct {
	service ConversationService
	limiter *middleware.RateLimiter
}

// NewMessageHandler はMessageHandlerを生成する。
func NewMessageHandler(service ConversationService, limiter *middleware.RateLimiter) *MessageHandler {
	return &MessageHandler{
		service: service,
		limiter: limiter,
	}
}

// HandleMessage はメッセージ1件を受け付けて応答を返す。
// POST /api/messages
func (h *MessageHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.BotError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディを解釈できません。",
			Category: "validation",
			Action:   "JSON形式で送信してください。",
		})
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.BotError{
			Code:     "INVALID_REQUEST",
			Message:  "user_idは必須です。",
			Category: "validation",
			Action:   "user_idを指定してください。",
		})
		return
	}
	if req.Command == "" && strings.TrimSpace(req.Text) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.BotError{
			Code:     "INVALID_REQUEST",
			Message:  "textまたはcommandのどちらかは必須です。",
			Category: "validation",
			Action:   "メッセージ本文かコマンドを指定してください。",
		})
		return
	}

	if h.limiter != nil && !h.limiter.Allow(req.UserID) {
		h.limiter.WriteRateLimitResponse(w)
		return
	}

	var reply *model.Reply
	if req.Command != "" {
		reply = h.service.HandleCommand(r.Context(), req.UserID, req.DisplayName, conversation.Command(req.Command))
	} else {
		reply = h.service.Handle(r.Context(), req.UserID, req.DisplayName, req.Text)
	}

	status := http.StatusOK
	if reply.Kind == model.ReplyStorageError {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(MessageResponse{
		Kind: string(reply.Kind),
		Text: presenter.Render(reply),
	})
}
