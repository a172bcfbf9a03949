// Package rewrite はOpenAIのチャット補完APIを使ったニュースのリライトを提供する。
package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/nao1215/newshub/internal/metrics"
	"github.com/nao1215/newshub/internal/supabase"
)

// outputFormatClause はSystem Promptの末尾に付加する出力形式の指定。
// モデルにJSONオブジェクトのみを出力させる。
const outputFormatClause = "\n\n## 出力形式\n必ず次のJSON形式のみで出力すること。他のテキストを含めてはならない。\n```json\n{\n  \"title_modified\": \"書き直したタイトル\",\n  \"content_modified\": \"書き直した本文\"\n}\n```"

// Item はリライト対象のニュース。
type Item struct {
	// URL はニュース記事のURL。Supabaseの行を特定するキーになる。
	URL string `json:"url"`
	// TitleTranslated は翻訳済みのタイトル。
	TitleTranslated string `json:"title_translated"`
	// ContentTranslated は翻訳済みの本文。
	ContentTranslated string `json:"content_translated"`
}

// Prompt はリライトに使用するSystem Prompt。
type Prompt struct {
	// Name はプロンプトの表示名。
	Name string `json:"name"`
	// Prompt はプロンプト本文。
	Prompt string `json:"prompt"`
}

// Result は1件のニュースのリライト結果。
type Result struct {
	// URL はリライト対象のニュースのURL。
	URL string `json:"url"`
	// TitleModified はリライト後のタイトル。
	TitleModified string `json:"title_modified"`
	// ContentModified はリライト後の本文。
	ContentModified string `json:"content_modified"`
	// Success はリライトとDB保存の両方が成功したかどうか。
	Success bool `json:"success"`
	// Error は失敗時の理由。
	Error string `json:"error,omitempty"`
}

// Summary はリライト処理全体の集計結果。
type Summary struct {
	// Total は処理した件数。
	Total int `json:"total"`
	// Success は成功した件数。
	Success int `json:"success"`
	// Failed は失敗した件数。
	Failed int `json:"failed"`
	// Results は各ニュースの結果。
	Results []Result `json:"results"`
}

// Rewriter はニュースのリライト処理を実行する。
type Rewriter struct {
	// client はOpenAIのAPIクライアント。APIキー未設定の場合はnil。
	client *openai.Client
	// model はリライトに使用するモデル名。
	model string
	// db はリライト結果を書き戻すSupabaseクライアント。
	db *supabase.Client
	// logger は処理ログの出力先。
	logger zerolog.Logger
}

// New は新しいRewriterを生成する。
// apiKeyが空の場合、リライト機能は無効になる（Availableがfalseを返す）。
func New(apiKey, baseURL, model string, db *supabase.Client, logger zerolog.Logger) *Rewriter {
	var client *openai.Client
	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		client = openai.NewClientWithConfig(cfg)
	}

	return &Rewriter{
		client: client,
		model:  model,
		db:     db,
		logger: logger,
	}
}

// Available はリライト機能が利用可能かどうかを返す。
func (r *Rewriter) Available() bool {
	return r.client != nil
}

// Rewrite はニュースを1件ずつ順番にリライトし、結果をSupabaseに書き戻す。
// 個々の失敗は結果に記録して処理を継続する。
func (r *Rewriter) Rewrite(ctx context.Context, items []Item, prompts []Prompt) Summary {
	systemPrompt := buildSystemPrompt(prompts)

	r.logger.Info().
		Int("items", len(items)).
		Int("prompts", len(prompts)).
		Str("model", r.model).
		Msg("AIリライトを開始")

	results := make([]Result, 0, len(items))
	for i, item := range items {
		result := r.rewriteOne(ctx, systemPrompt, item)
		metrics.RewriteTotal.WithLabelValues(metrics.ResultLabel(result.Success)).Inc()

		if result.Success {
			r.logger.Info().
				Int("index", i+1).
				Str("url", item.URL).
				Msg("リライト成功")
		} else {
			r.logger.Error().
				Int("index", i+1).
				Str("url", item.URL).
				Str("reason", result.Error).
				Msg("リライト失敗")
		}
		results = append(results, result)
	}

	summary := Summary{Total: len(results), Results: results}
	for _, res := range results {
		if res.Success {
			summary.Success++
		} else {
			summary.Failed++
		}
	}

	r.logger.Info().
		Int("total", summary.Total).
		Int("success", summary.Success).
		Int("failed", summary.Failed).
		Msg("AIリライトが完了")
	return summary
}

// rewriteOne は1件のニュースをリライトしてSupabaseに保存する。
func (r *Rewriter) rewriteOne(ctx context.Context, systemPrompt string, item Item) Result {
	if item.URL == "" {
		return Result{Success: false, Error: "URLがありません"}
	}

	userMessage := fmt.Sprintf("元のタイトル：%s\n\n元の本文：%s", item.TitleTranslated, item.ContentTranslated)

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Result{URL: item.URL, Success: false, Error: fmt.Sprintf("チャット補完の呼び出しに失敗: %v", err)}
	}
	if len(resp.Choices) == 0 {
		return Result{URL: item.URL, Success: false, Error: "チャット補完の応答が空です"}
	}

	var rewritten struct {
		TitleModified   string `json:"title_modified"`
		ContentModified string `json:"content_modified"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &rewritten); err != nil {
		return Result{URL: item.URL, Success: false, Error: fmt.Sprintf("応答JSONの解析に失敗: %v", err)}
	}
	if rewritten.TitleModified == "" || rewritten.ContentModified == "" {
		return Result{URL: item.URL, Success: false, Error: "応答にtitle_modifiedまたはcontent_modifiedが含まれていません"}
	}

	if err := r.db.UpdateRewrite(ctx, item.URL, rewritten.TitleModified, rewritten.ContentModified); err != nil {
		return Result{URL: item.URL, Success: false, Error: err.Error()}
	}

	return Result{
		URL:             item.URL,
		TitleModified:   rewritten.TitleModified,
		ContentModified: rewritten.ContentModified,
		Success:         true,
	}
}

// Model はリライトに使用するモデル名を返す。
func (r *Rewriter) Model() string {
	return r.model
}

// buildSystemPrompt は複数のSystem Promptを結合し、出力形式の指定を付加する。
func buildSystemPrompt(prompts []Prompt) string {
	texts := make([]string, 0, len(prompts))
	for _, p := range prompts {
		texts = append(texts, p.Prompt)
	}
	return strings.Join(texts, "\n\n") + outputFormatClause
}
