// Package event はニュース配信パイプラインの活動イベントの語彙を定義する。
// リライト・配信・トークン更新のすべての記録はこのイベントとして永続化される。
package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeNews はニュース記事を表す。
	AggregateTypeNews AggregateType = "News"
	// AggregateTypePrompt はSystem Promptを表す。
	AggregateTypePrompt AggregateType = "Prompt"
	// AggregateTypeToken はプラットフォームのアクセストークンを表す。
	AggregateTypeToken AggregateType = "Token"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeNewsRewritten はAIによるニュースのリライトが成功したことを表す。
	TypeNewsRewritten Type = "NewsRewritten"
	// TypeNewsRewriteFailed はAIによるニュースのリライトが失敗したことを表す。
	TypeNewsRewriteFailed Type = "NewsRewriteFailed"
	// TypeNewsPublished はニュースが外部プラットフォームに配信されたことを表す。
	TypeNewsPublished Type = "NewsPublished"
	// TypeNewsPublishFailed はニュースの配信が失敗したことを表す。
	TypeNewsPublishFailed Type = "NewsPublishFailed"

	// TypePromptCreated はSystem Promptが作成されたことを表す。
	TypePromptCreated Type = "PromptCreated"
	// TypePromptDeleted はSystem Promptが削除されたことを表す。
	TypePromptDeleted Type = "PromptDeleted"

	// TypeTokenRefreshed は長期アクセストークンが更新されたことを表す。
	TypeTokenRefreshed Type = "TokenRefreshed"
)

// Event はパイプラインの活動記録を表す不変のイベントレコード。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子（ニュースURL、プラットフォーム名等）。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// NewsRewrittenData はNewsRewrittenイベントのデータ。
type NewsRewrittenData struct {
	// URL はリライトされたニュースのURL。
	URL string `json:"url"`
	// Model はリライトに使用したモデル名。
	Model string `json:"model"`
}

// NewsRewriteFailedData はNewsRewriteFailedイベントのデータ。
type NewsRewriteFailedData struct {
	// URL はリライト対象のニュースのURL。
	URL string `json:"url"`
	// Reason は失敗理由。
	Reason string `json:"reason"`
}

// NewsPublishedData はNewsPublishedイベントのデータ。
type NewsPublishedData struct {
	// Platform は配信先プラットフォーム名。
	Platform string `json:"platform"`
	// PostID はプラットフォーム側の投稿ID。
	PostID string `json:"post_id"`
	// PostURL は投稿のURL。
	PostURL string `json:"post_url,omitempty"`
}

// NewsPublishFailedData はNewsPublishFailedイベントのデータ。
type NewsPublishFailedData struct {
	// Platform は配信先プラットフォーム名。
	Platform string `json:"platform"`
	// Reason は失敗理由。
	Reason string `json:"reason"`
}

// PromptCreatedData はPromptCreatedイベントのデータ。
type PromptCreatedData struct {
	// Name はSystem Promptの名前。
	Name string `json:"name"`
}

// PromptDeletedData はPromptDeletedイベントのデータ。
type PromptDeletedData struct {
	// Name は削除されたSystem Promptの名前。
	Name string `json:"name"`
}

// TokenRefreshedData はTokenRefreshedイベントのデータ。
type TokenRefreshedData struct {
	// Platform はトークンのプラットフォーム名。
	Platform string `json:"platform"`
	// ExpiresAt は新しいトークンの有効期限。
	ExpiresAt time.Time `json:"expires_at"`
}
