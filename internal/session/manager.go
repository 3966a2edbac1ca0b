// Package session はユーザーごとの認証状態と会話フローを管理する。
//
// セッションはプロセス内のキー付きストア（ユーザーID→Session）に保持され、
// 明示的なキャンセルまたはプロセス再起動でのみリセットされる。
// ユーザーレコードの作成とインタラクションカウンターはリポジトリに委譲し、
// 台帳への直接アクセスは行わない。
package session

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/bankman/internal/model"
	"github.com/hitoshi/bankman/internal/repository"
)

// Manager はセッションストアの実装。
// sessionsへのアクセスはmuで保護され、ユーザー間の操作は互いに干渉しない。
type Manager struct {
	users repository.UserRepository
	pin   string

	mu       sync.RWMutex
	sessions map[string]*model.Session

	// userLocks はユーザー単位のメッセージ処理直列化用。
	// トランスポートの順序保証に依存せず、同一ユーザーの並行処理を排除する。
	lockMu    sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewManager はManagerを生成する。
// pinは全ユーザー共通の固定暗証番号。
func NewManager(users repository.UserRepository, pin string) *Manager {
	return &Manager{
		users:     users,
		pin:       pin,
		sessions:  make(map[string]*model.Session),
		userLocks: make(map[string]*sync.Mutex),
	}
}

// Lock は指定ユーザーの処理ロックを取得し、解放用の関数を返す。
// オーケストレーターがメッセージ処理全体を囲んで呼び出す。
func (m *Manager) Lock(userID string) func() {
	m.lockMu.Lock()
	l, ok := m.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.userLocks[userID] = l
	}
	m.lockMu.Unlock()

	l.Lock()
	return l.Unlock
}

// EnsureUser はユーザーレコードが存在しなければ作成する（冪等）。
// 新規作成した場合はtrueを返す。既存ユーザーには何もしない。
// 新規ユーザーは残高0、インタラクション0で開始する。
func (m *Manager) EnsureUser(ctx context.Context, userID, displayName string) (bool, error) {
	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	if user != nil {
		return false, nil
	}

	err = m.users.Create(ctx, &model.User{
		ID:           userID,
		Name:         displayName,
		Balance:      decimal.Zero,
		RegisteredAt: time.Now(),
		Interactions: 0,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	return true, nil
}

// IsAuthenticated は指定ユーザーが認証済みかを返す。
// セッションが存在しない場合は未認証扱い。
func (m *Manager) IsAuthenticated(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return ok && s.Authenticated
}

// Authenticate は入力値を共通暗証番号と比較する。
// 一致した場合は認証フラグを立て、インタラクションカウンターを加算して
// (true, nil) を返す。不一致の場合は状態を一切変更せず (false, nil) を返す。
// 試行回数の制限は行わない。
// カウンター加算に失敗した場合でも認証自体は成立し、(true, err) を返す。
func (m *Manager) Authenticate(ctx context.Context, userID, supplied string) (bool, error) {
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(m.pin)) != 1 {
		return false, nil
	}

	m.mu.Lock()
	s := m.getOrCreateLocked(userID)
	s.Authenticated = true
	m.mu.Unlock()

	if _, err := m.users.IncrementInteractions(ctx, userID); err != nil {
		return true, fmt.Errorf("failed to count authentication: %w", err)
	}
	return true, nil
}

// IncrementInteractions はインタラクションカウンターを加算し、更新後の値を返す。
func (m *Manager) IncrementInteractions(ctx context.Context, userID string) (int, error) {
	return m.users.IncrementInteractions(ctx, userID)
}

// Interactions は現在のインタラクションカウンターを返す。
// ユーザーが存在しない場合は0を返す。
func (m *Manager) Interactions(ctx context.Context, userID string) (int, error) {
	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return 0, nil
	}
	return user.Interactions, nil
}

// StartFlow は新しいフローを開始する。進行中のフローがあれば置き換える。
func (m *Manager) StartFlow(userID string, flow model.Flow, pending decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.getOrCreateLocked(userID)
	s.Flow = flow
	s.PendingPrincipal = pending
}

// AdvanceFlow はフローを次の状態へ進め、フロー付随データを差し替える。
func (m *Manager) AdvanceFlow(userID string, flow model.Flow, pending decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.getOrCreateLocked(userID)
	s.Flow = flow
	s.PendingPrincipal = pending
}

// CancelFlow はフローを無条件にFlowNoneへ戻し、付随データを破棄する。
// どの状態からでも呼び出せる。永続化済みの取引やシミュレーション結果は
// ロールバックしない。
func (m *Manager) CancelFlow(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.getOrCreateLocked(userID)
	s.Flow = model.FlowNone
	s.PendingPrincipal = decimal.Zero
}

// CurrentFlow は進行中のフローと付随データを返す。
// セッションが存在しない場合は(FlowNone, 0)を返す。
func (m *Manager) CurrentFlow(userID string) (model.Flow, decimal.Decimal) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return model.FlowNone, decimal.Zero
	}
	return s.Flow, s.PendingPrincipal
}

// getOrCreateLocked はセッションを取得または新規作成する。
// 呼び出し側がm.muの書き込みロックを保持していること。
func (m *Manager) getOrCreateLocked(userID string) *model.Session {
	s, ok := m.sessions[userID]
	if !ok {
		s = &model.Session{UserID: userID, Flow: model.FlowNone}
		m.sessions[userID] = s
	}
	return s
}
