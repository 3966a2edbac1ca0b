// Package conversation はメッセージ処理のオーケストレーターを提供する。
//
// (認証状態, フロー) の上の明示的な状態機械として動作する:
//
//	UNAUTHENTICATED        : 任意のテキストを暗証番号の試行として扱う
//	AUTHENTICATED_IDLE     : 意図分類の結果に応じてハンドラーへ振り分ける
//	AWAITING_LOAN_AMOUNT   : テキストをローン金額として解釈する
//	AWAITING_LOAN_TERM     : テキストをローン期間として解釈する
//
// 終端状態はなく、セッションの生存期間中この機械は循環し続ける。
// キャンセルイベントはどのAWAITING_*状態からも無条件にIDLEへ戻す。
package conversation

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/bankman/internal/assistant"
	"github.com/hitoshi/bankman/internal/intent"
	"github.com/hitoshi/bankman/internal/ledger"
	"github.com/hitoshi/bankman/internal/loan"
	"github.com/hitoshi/bankman/internal/metrics"
	"github.com/hitoshi/bankman/internal/model"
	"github.com/hitoshi/bankman/internal/repository"
	"github.com/hitoshi/bankman/internal/session"
)

// Command はトランスポート層から受け取る明示的なコマンドイベント。
type Command string

const (
	// CommandStart はユーザー登録と認証開始を要求する。
	CommandStart Command = "start"
	// CommandBalance は残高照会を要求する。
	CommandBalance Command = "balance"
	// CommandTransactions は取引履歴照会を要求する。
	CommandTransactions Command = "transactions"
	// CommandLoan はローンシミュレーションのフロー開始を要求する。
	CommandLoan Command = "loan"
	// CommandCancel は進行中のフローのキャンセルを要求する。
	CommandCancel Command = "cancel"
	// CommandHelp はコマンド一覧の表示を要求する。
	CommandHelp Command = "help"
)

// Config はオーケストレーターの動作設定。
type Config struct {
	// SeedDemoTransactions が真の場合、新規ユーザー作成直後に
	// デモ取引を台帳へ投入する。
	SeedDemoTransactions bool
	// RecentTxLimit は履歴照会で返す最大件数。
	RecentTxLimit int
}

// Orchestrator は状態機械と各コンポーネントを合成する。
// セッション確認→分類またはフロー処理→台帳/計算機→フロー更新の順に進み、
// 整形前の結果記述子(Reply)をトランスポート層へ返す。
type Orchestrator struct {
	sessions  *session.Manager
	ledger    *ledger.Service
	quotes    repository.QuoteRepository
	responder assistant.Responder
	metrics   metrics.MetricsCollector
	cfg       Config
}

// NewOrchestrator はOrchestratorを生成する。
func NewOrchestrator(
	sessions *session.Manager,
	ledgerSvc *ledger.Service,
	quotes repository.QuoteRepository,
	responder assistant.Responder,
	collector metrics.MetricsCollector,
	cfg Config,
) *Orchestrator {
	if cfg.RecentTxLimit <= 0 {
		cfg.RecentTxLimit = 5
	}
	return &Orchestrator{
		sessions:  sessions,
		ledger:    ledgerSvc,
		quotes:    quotes,
		responder: responder,
		metrics:   collector,
		cfg:       cfg,
	}
}

// Handle は自由テキストメッセージを1件処理する。
// メッセージ全体をユーザー単位のロックで囲み、同一ユーザーの
// 状態遷移が常に直列化されるようにする。ユーザー間は並行に処理できる。
func (o *Orchestrator) Handle(ctx context.Context, userID, displayName, text string) *model.Reply {
	unlock := o.sessions.Lock(userID)
	defer unlock()

	if reply := o.ensureUser(ctx, userID, displayName); reply != nil {
		return o.record(reply)
	}

	// 未認証: テキストは暗証番号の試行
	if !o.sessions.IsAuthenticated(userID) {
		return o.record(o.authenticate(ctx, userID, displayName, strings.TrimSpace(text)))
	}

	// フロー進行中: テキストはフロー入力
	flow, pending := o.sessions.CurrentFlow(userID)
	switch flow {
	case model.FlowAwaitingLoanAmount:
		return o.record(o.handleLoanAmount(userID, text))
	case model.FlowAwaitingLoanTerm:
		return o.record(o.handleLoanTerm(ctx, userID, text, pending))
	}

	// IDLE: 意図分類へ
	if _, err := o.sessions.IncrementInteractions(ctx, userID); err != nil {
		slog.Warn("failed to count interaction",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	classified := intent.Classify(text)
	o.metrics.RecordMessage(string(classified))

	switch classified {
	case model.IntentBalance:
		return o.record(o.balanceReply(ctx, userID))
	case model.IntentTransactions:
		return o.record(o.transactionsReply(ctx, userID))
	case model.IntentLoan:
		o.sessions.StartFlow(userID, model.FlowAwaitingLoanAmount, decimal.Zero)
		return o.record(&model.Reply{Kind: model.ReplyLoanPromptAmount})
	default:
		return o.record(o.assistantReply(ctx, text))
	}
}

// HandleCommand は明示的なコマンドイベントを1件処理する。
// フロー進行中でもコマンドはフロー入力として解釈されない。
// CommandCancel以外のコマンドは進行中のフローに影響しない。
func (o *Orchestrator) HandleCommand(ctx context.Context, userID, displayName string, cmd Command) *model.Reply {
	unlock := o.sessions.Lock(userID)
	defer unlock()

	if reply := o.ensureUser(ctx, userID, displayName); reply != nil {
		return o.record(reply)
	}

	// helpは認証不要
	if cmd == CommandHelp {
		return o.record(&model.Reply{Kind: model.ReplyHelp})
	}

	if !o.sessions.IsAuthenticated(userID) {
		if cmd == CommandStart {
			return o.record(&model.Reply{Kind: model.ReplyWelcome, UserName: displayName})
		}
		return o.record(&model.Reply{Kind: model.ReplyAuthRequired})
	}

	if cmd != CommandCancel && cmd != CommandStart {
		if _, err := o.sessions.IncrementInteractions(ctx, userID); err != nil {
			slog.Warn("failed to count interaction",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	switch cmd {
	case CommandStart:
		return o.record(&model.Reply{Kind: model.ReplyHelp, UserName: displayName})
	case CommandBalance:
		return o.record(o.balanceReply(ctx, userID))
	case CommandTransactions:
		return o.record(o.transactionsReply(ctx, userID))
	case CommandLoan:
		o.sessions.StartFlow(userID, model.FlowAwaitingLoanAmount, decimal.Zero)
		return o.record(&model.Reply{Kind: model.ReplyLoanPromptAmount})
	case CommandCancel:
		o.sessions.CancelFlow(userID)
		return o.record(&model.Reply{Kind: model.ReplyLoanCancelled})
	default:
		return o.record(&model.Reply{Kind: model.ReplyHelp})
	}
}

// ensureUser はユーザーレコードを必要なら作成し、設定されていれば
// デモ取引を投入する。永続化に失敗した場合はstorage_errorのReplyを返し、
// 成功時はnilを返す。
func (o *Orchestrator) ensureUser(ctx context.Context, userID, displayName string) *model.Reply {
	created, err := o.sessions.EnsureUser(ctx, userID, displayName)
	if err != nil {
		slog.Error("failed to ensure user",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return &model.Reply{Kind: model.ReplyStorageError, Err: model.NewStorageError("ユーザー登録")}
	}

	if created && o.cfg.SeedDemoTransactions {
		if err := o.ledger.SeedDemo(ctx, userID); err != nil {
			// シード失敗は口座利用を妨げない。残高0のまま続行する。
			slog.Warn("failed to seed demo transactions",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// authenticate は未認証ユーザーのテキストを暗証番号として検証する。
func (o *Orchestrator) authenticate(ctx context.Context, userID, displayName, supplied string) *model.Reply {
	ok, err := o.sessions.Authenticate(ctx, userID, supplied)
	if !ok {
		o.metrics.RecordAuthFailure()
		return &model.Reply{Kind: model.ReplyAuthRejected, Err: model.NewAuthFailedError()}
	}
	if err != nil {
		// 認証は成立している。カウンター加算の失敗だけを記録する。
		slog.Warn("authentication side effect failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
	return &model.Reply{Kind: model.ReplyAuthOK, UserName: displayName}
}

// balanceReply は残高照会を処理する。状態遷移はない。
func (o *Orchestrator) balanceReply(ctx context.Context, userID string) *model.Reply {
	balance, err := o.ledger.Balance(ctx, userID)
	if err != nil {
		slog.Error("balance query failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return &model.Reply{Kind: model.ReplyStorageError, Err: model.NewStorageError("残高照会")}
	}
	return &model.Reply{Kind: model.ReplyBalance, Balance: balance}
}

// transactionsReply は履歴照会を処理する。状態遷移はない。
func (o *Orchestrator) transactionsReply(ctx context.Context, userID string) *model.Reply {
	txns, err := o.ledger.Recent(ctx, userID, o.cfg.RecentTxLimit)
	if err != nil {
		slog.Error("transactions query failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return &model.Reply{Kind: model.ReplyStorageError, Err: model.NewStorageError("取引履歴照会")}
	}
	return &model.Reply{Kind: model.ReplyTransactions, Transactions: txns}
}

// handleLoanAmount はAWAITING_LOAN_AMOUNT状態でのテキストを金額として解釈する。
// 解析失敗または範囲外の場合は同じ状態に留まり再入力を促す。
// 有効な場合は金額をフロー付随データとして保存し、期間入力待ちへ進む。
func (o *Orchestrator) handleLoanAmount(userID, text string) *model.Reply {
	amount, err := parseAmount(text)
	if err != nil {
		return &model.Reply{Kind: model.ReplyValidationError, Err: err}
	}
	if err := loan.ValidatePrincipal(amount); err != nil {
		botErr, _ := err.(*model.BotError)
		return &model.Reply{Kind: model.ReplyValidationError, Err: botErr}
	}

	o.sessions.AdvanceFlow(userID, model.FlowAwaitingLoanTerm, amount)
	return &model.Reply{Kind: model.ReplyLoanPromptTerm}
}

// handleLoanTerm はAWAITING_LOAN_TERM状態でのテキストを期間として解釈する。
// 有効な場合は保留中の金額・期間・インタラクションカウンター（ロイヤルティ
// シグナル）で計算機を呼び、結果を監査用に永続化してIDLEへ戻る。
func (o *Orchestrator) handleLoanTerm(ctx context.Context, userID, text string, pending decimal.Decimal) *model.Reply {
	term, err := parseTerm(text)
	if err != nil {
		return &model.Reply{Kind: model.ReplyValidationError, Err: err}
	}
	if err := loan.ValidateTerm(term); err != nil {
		botErr, _ := err.(*model.BotError)
		return &model.Reply{Kind: model.ReplyValidationError, Err: botErr}
	}

	loyalty, ierr := o.sessions.Interactions(ctx, userID)
	if ierr != nil {
		slog.Warn("failed to read loyalty signal, using zero",
			slog.String("user_id", userID),
			slog.String("error", ierr.Error()),
		)
		loyalty = 0
	}

	quote, qerr := loan.Quote(userID, pending, term, loyalty)
	if qerr != nil {
		botErr, _ := qerr.(*model.BotError)
		return &model.Reply{Kind: model.ReplyValidationError, Err: botErr}
	}

	if err := o.quotes.Save(ctx, quote); err != nil {
		// 永続化だけが失敗した。フローを維持し、期間の再入力で再試行できる。
		slog.Error("failed to persist loan quote",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return &model.Reply{Kind: model.ReplyStorageError, Err: model.NewStorageError("シミュレーション結果の保存")}
	}

	o.sessions.CancelFlow(userID)
	return &model.Reply{Kind: model.ReplyLoanQuote, Quote: quote}
}

// assistantReply はGENERAL意図を言語生成コラボレーターに委譲する。
// 失敗やタイムアウトは固定のフォールバック文に置き換え、
// エラーとして状態機械へ伝播させない。
func (o *Orchestrator) assistantReply(ctx context.Context, text string) *model.Reply {
	start := time.Now()
	answer, err := o.responder.Respond(ctx, text)
	o.metrics.RecordAssistantLatency(time.Since(start))

	if err != nil {
		o.metrics.RecordAssistantFallback()
		slog.Warn("assistant unavailable, using fallback",
			slog.String("error", err.Error()),
		)
		return &model.Reply{Kind: model.ReplyAssistant, Text: assistant.FallbackMessage}
	}
	return &model.Reply{Kind: model.ReplyAssistant, Text: answer}
}

// record は応答種別のメトリクスを記録して同じReplyを返す。
func (o *Orchestrator) record(reply *model.Reply) *model.Reply {
	o.metrics.RecordReply(string(reply.Kind))
	return reply
}

// parseAmount は金額テキストをdecimalとして解析する。
// 千区切りの "." と "," を取り除いてから解析する（"100.000" → 100000）。
func parseAmount(text string) (decimal.Decimal, *model.BotError) {
	cleaned := stripSeparators(text)
	if cleaned == "" {
		return decimal.Zero, model.NewValidationError("金額が空です")
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, model.NewValidationError("金額を数値として解釈できません")
	}
	return amount, nil
}

// parseTerm は期間テキストを整数月として解析する。
func parseTerm(text string) (int, *model.BotError) {
	cleaned := stripSeparators(text)
	if cleaned == "" {
		return 0, model.NewValidationError("期間が空です")
	}
	term, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, model.NewValidationError("期間を整数として解釈できません")
	}
	return term, nil
}

// stripSeparators は入力から空白と千区切り記号を取り除く。
func stripSeparators(text string) string {
	var b []byte
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '.', ',':
		default:
			b = append(b, text[i])
		}
	}
	return string(b)
}
