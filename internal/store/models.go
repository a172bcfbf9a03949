package store

import (
	"database/sql"
	"time"
)

// SystemPrompt はAIリライトに使用するSystem Promptのレコード。
type SystemPrompt struct {
	// ID はSystem Promptの一意識別子（UUID）。
	ID string
	// Name はプロンプトの表示名。
	Name string
	// Prompt はプロンプト本文。
	Prompt string
	// CreatedAt は作成日時。
	CreatedAt time.Time
}

// PlatformToken はプラットフォームごとの長期アクセストークンのレコード。
type PlatformToken struct {
	// Platform はプラットフォーム名。
	Platform string
	// AccessToken は長期アクセストークン。
	AccessToken string
	// IssuedAt はトークンの発行日時。
	IssuedAt time.Time
	// ExpiresIn はトークンの有効秒数。
	ExpiresIn int64
	// RefreshedAt は最後に更新した日時。
	RefreshedAt sql.NullTime
}

// ExpiresAt はトークンの有効期限を返す。
func (t PlatformToken) ExpiresAt() time.Time {
	return t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// ActivityEvent はパイプラインの活動イベントのレコード。
type ActivityEvent struct {
	// ID はイベントの一意識別子（UUID）。
	ID string
	// AggregateID は対象エンティティの識別子。
	AggregateID string
	// AggregateType は対象エンティティの種類。
	AggregateType string
	// EventType はイベントの種類。
	EventType string
	// Data はイベント固有のデータ（JSON文字列）。
	Data string
	// CreatedAt はイベントの作成日時。
	CreatedAt time.Time
}
