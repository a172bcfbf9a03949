package store

import (
	"context"
	"database/sql"
	"time"
)

// Queries はクエリ実行オブジェクト。
type Queries struct {
	db *sql.DB
}

// New は新しいクエリ実行オブジェクトを生成する。
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// CreateSystemPromptParams はCreateSystemPromptのパラメータ。
type CreateSystemPromptParams struct {
	ID     string
	Name   string
	Prompt string
}

// CreateSystemPrompt はSystem Promptを作成する。
func (q *Queries) CreateSystemPrompt(ctx context.Context, arg CreateSystemPromptParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO system_prompts (id, name, prompt) VALUES (?, ?, ?)`,
		arg.ID, arg.Name, arg.Prompt,
	)
	return err
}

// GetSystemPromptByID は指定されたIDのSystem Promptを取得する。
func (q *Queries) GetSystemPromptByID(ctx context.Context, id string) (SystemPrompt, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, name, prompt, created_at FROM system_prompts WHERE id = ?`, id)

	var p SystemPrompt
	err := row.Scan(&p.ID, &p.Name, &p.Prompt, &p.CreatedAt)
	return p, err
}

// ListSystemPrompts はすべてのSystem Promptを作成順に取得する。
func (q *Queries) ListSystemPrompts(ctx context.Context) ([]SystemPrompt, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, prompt, created_at FROM system_prompts ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var prompts []SystemPrompt
	for rows.Next() {
		var p SystemPrompt
		if err := rows.Scan(&p.ID, &p.Name, &p.Prompt, &p.CreatedAt); err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// DeleteSystemPrompt は指定されたIDのSystem Promptを削除する。
func (q *Queries) DeleteSystemPrompt(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM system_prompts WHERE id = ?`, id)
	return err
}

// GetPlatformToken は指定されたプラットフォームのトークンを取得する。
// 存在しない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetPlatformToken(ctx context.Context, platform string) (PlatformToken, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT platform, access_token, issued_at, expires_in, refreshed_at
		 FROM platform_tokens WHERE platform = ?`, platform)

	var t PlatformToken
	err := row.Scan(&t.Platform, &t.AccessToken, &t.IssuedAt, &t.ExpiresIn, &t.RefreshedAt)
	return t, err
}

// ListPlatformTokens はすべてのプラットフォームトークンを取得する。
func (q *Queries) ListPlatformTokens(ctx context.Context) ([]PlatformToken, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT platform, access_token, issued_at, expires_in, refreshed_at
		 FROM platform_tokens ORDER BY platform`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tokens []PlatformToken
	for rows.Next() {
		var t PlatformToken
		if err := rows.Scan(&t.Platform, &t.AccessToken, &t.IssuedAt, &t.ExpiresIn, &t.RefreshedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// UpsertPlatformTokenParams はUpsertPlatformTokenのパラメータ。
type UpsertPlatformTokenParams struct {
	Platform    string
	AccessToken string
	IssuedAt    time.Time
	ExpiresIn   int64
}

// UpsertPlatformToken はトークンを挿入または更新する。
// 更新時はrefreshed_atに現在日時を記録する。
func (q *Queries) UpsertPlatformToken(ctx context.Context, arg UpsertPlatformTokenParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO platform_tokens (platform, access_token, issued_at, expires_in)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(platform) DO UPDATE SET
		     access_token = excluded.access_token,
		     issued_at    = excluded.issued_at,
		     expires_in   = excluded.expires_in,
		     refreshed_at = datetime('now')`,
		arg.Platform, arg.AccessToken, arg.IssuedAt.UTC(), arg.ExpiresIn,
	)
	return err
}

// AppendEventParams はAppendEventのパラメータ。
type AppendEventParams struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Data          string
	CreatedAt     time.Time
}

// AppendEvent は活動イベントを追記する。
func (q *Queries) AppendEvent(ctx context.Context, arg AppendEventParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO events (id, aggregate_id, aggregate_type, event_type, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.AggregateID, arg.AggregateType, arg.EventType, arg.Data, arg.CreatedAt.UTC(),
	)
	return err
}

// ListEventsSince は指定日時以降の活動イベントを古い順に取得する。
func (q *Queries) ListEventsSince(ctx context.Context, since time.Time) ([]ActivityEvent, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, aggregate_id, aggregate_type, event_type, data, created_at
		 FROM events WHERE created_at >= ? ORDER BY created_at, id`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []ActivityEvent
	for rows.Next() {
		var e ActivityEvent
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Data, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
