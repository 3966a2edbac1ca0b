package model

import "fmt"

// BotError は統一エラーフォーマットを表す。
// トランスポートに表示する原因カテゴリと対処方法を含む。
// このコアに致命的なエラーは存在せず、すべて処理中の1メッセージに閉じる。
type BotError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, storage, collaborator
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *BotError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeAuthFailed   = "AUTH_FAILED"
	ErrCodeStorage      = "STORAGE_FAILURE"
	ErrCodeCollaborator = "COLLABORATOR_FAILURE"
)

// NewValidationError は数値入力の検証エラーを生成する。
// 回復可能で、フローを維持したまま再入力を促す。
func NewValidationError(reason string) *BotError {
	return &BotError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "数値のみを入力してください。例: 100000",
	}
}

// NewAuthFailedError は暗証番号の不一致エラーを生成する。
// ロックアウトは行わず、何度でも再試行できる。
func NewAuthFailedError() *BotError {
	return &BotError{
		Code:     ErrCodeAuthFailed,
		Message:  "暗証番号が一致しません。",
		Category: "auth",
		Action:   "暗証番号を確認してもう一度入力してください。",
	}
}

// NewStorageError は永続化の失敗エラーを生成する。
// 失敗した操作だけが無効になり、セッション状態は破損扱いにしない。
func NewStorageError(op string) *BotError {
	return &BotError{
		Code:     ErrCodeStorage,
		Message:  fmt.Sprintf("データの保存・取得に失敗しました: %s", op),
		Category: "storage",
		Action:   "しばらく待ってから同じ操作をやり直してください。",
	}
}

// NewCollaboratorError は言語生成コラボレーターの失敗エラーを生成する。
// 呼び出し側は固定のフォールバック文に置き換え、状態機械へは伝播させない。
func NewCollaboratorError(reason string) *BotError {
	return &BotError{
		Code:     ErrCodeCollaborator,
		Message:  fmt.Sprintf("アシスタント応答の取得に失敗しました: %s", reason),
		Category: "collaborator",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
