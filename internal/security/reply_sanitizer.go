// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ReplySanitizerService は言語生成コラボレーターの応答をサニタイズし、
// HTMLタグやスクリプトがそのままトランスポートに渡ることを防ぐ。
// bluemondayのStrictPolicy（全タグ除去）を使用する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ReplySanitizerService はアシスタント応答のサニタイズ機能のインターフェースを定義する。
type ReplySanitizerService interface {
	// Sanitize は応答テキストからHTMLタグをすべて除去し、
	// 前後の空白をトリムしたプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// replySanitizer はReplySanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type replySanitizer struct {
	policy *bluemonday.Policy
}

// NewReplySanitizer はReplySanitizerServiceの新しいインスタンスを生成する。
// 応答はプレーンテキストとして扱うため、許可タグは一切ない。
func NewReplySanitizer() *replySanitizer {
	return &replySanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は応答テキストをサニタイズしてプレーンテキストを返す。
// StrictPolicyはタグ除去後に残ったテキストをHTMLエスケープするため、
// エスケープを戻してからトリムする。
func (s *replySanitizer) Sanitize(raw string) string {
	cleaned := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
