// Package store はSystem Prompt・プラットフォームトークン台帳・活動イベントを
// 単一のSQLiteファイルに永続化するクエリ層を提供する。
package store

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。
const schema = `
CREATE TABLE IF NOT EXISTS system_prompts (
    -- System Promptの一意識別子
    id TEXT PRIMARY KEY,
    -- プロンプトの表示名
    name TEXT NOT NULL,
    -- プロンプト本文
    prompt TEXT NOT NULL,
    -- 作成日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS platform_tokens (
    -- プラットフォーム名（facebook / threads / instagram）
    platform TEXT PRIMARY KEY,
    -- 長期アクセストークン
    access_token TEXT NOT NULL,
    -- トークンの発行日時
    issued_at DATETIME NOT NULL,
    -- トークンの有効秒数
    expires_in INTEGER NOT NULL,
    -- 最後に更新した日時
    refreshed_at DATETIME
);

CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    aggregate_id TEXT NOT NULL,
    aggregate_type TEXT NOT NULL,
    event_type TEXT NOT NULL,
    data TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

-- 日時指定でのイベント取得を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_events_created_at
    ON events(created_at);
`

// InitSchema はSQLiteデータベースにスキーマを適用する。
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
