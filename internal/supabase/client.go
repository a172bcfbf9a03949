// Package supabase はニュースを保持するSupabase（PostgREST）へのクライアントを提供する。
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/nao1215/newshub/pkg/httpclient"
)

// ErrNotFound は指定された条件に一致する行が存在しないことを表す。
var ErrNotFound = errors.New("supabase: 該当する行が見つかりません")

// selectColumns はニュース取得時に読み込むカラム。
const selectColumns = "id,title_translated,content_translated,images,sourceWebsite,url,title_modified,content_modified"

// Row はニューステーブルの1行。
// imagesはJSON文字列・配列・オブジェクトのいずれの形でも格納されているため、
// 生のJSONとして保持し、呼び出し側で正規化する。
type Row struct {
	// ID は行の一意識別子。
	ID int64 `json:"id"`
	// TitleTranslated は翻訳済みのタイトル。
	TitleTranslated string `json:"title_translated"`
	// ContentTranslated は翻訳済みの本文。
	ContentTranslated string `json:"content_translated"`
	// Images は画像情報（生のJSON値）。
	Images json.RawMessage `json:"images"`
	// SourceWebsite はニュースの来源サイトURL。
	SourceWebsite string `json:"sourceWebsite"`
	// URL はニュース記事のURL。
	URL string `json:"url"`
	// TitleModified はAIがリライトしたタイトル。
	TitleModified string `json:"title_modified"`
	// ContentModified はAIがリライトした本文。
	ContentModified string `json:"content_modified"`
}

// Client はSupabaseのPostgREST APIへのクライアント。
type Client struct {
	// httpClient はPostgRESTとの通信に使うHTTPクライアント。
	httpClient *httpclient.Client
	// table はニュースを保持するテーブル名。
	table string
	// logger は不正な行の読み飛ばしなどを記録する。
	logger zerolog.Logger
}

// New は新しいSupabaseクライアントを生成する。
// baseURLにはSupabaseプロジェクトのURL（例: "https://xyz.supabase.co"）を指定する。
func New(baseURL, apiKey, table string, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: httpclient.New(baseURL,
			httpclient.WithHeader("apikey", apiKey),
			httpclient.WithHeader("Authorization", "Bearer "+apiKey),
			// 更新時に影響行を返させ、0行更新をエラーとして検出する
			httpclient.WithHeader("Prefer", "return=representation"),
		),
		table:  table,
		logger: logger,
	}
}

// Table はニューステーブル名を返す。
func (c *Client) Table() string {
	return c.table
}

// ListNews はニューステーブルの全行を取得する。
// デシリアライズできない行は読み飛ばし、残りの行を返す。
func (c *Client) ListNews(ctx context.Context) ([]Row, error) {
	path := fmt.Sprintf("/rest/v1/%s?select=%s", c.table, url.QueryEscape(selectColumns))

	var raws []json.RawMessage
	if err := c.httpClient.GetJSON(ctx, path, &raws); err != nil {
		return nil, fmt.Errorf("ニュース一覧の取得に失敗: %w", err)
	}

	rows := make([]Row, 0, len(raws))
	for i, raw := range raws {
		var row Row
		if err := json.Unmarshal(raw, &row); err != nil {
			c.logger.Warn().Err(err).Int("index", i).Msg("デシリアライズできない行を読み飛ばした")
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// GetNewsByID は指定されたIDの行を取得する。
// 行が存在しない場合はErrNotFoundを返す。
func (c *Client) GetNewsByID(ctx context.Context, id int64) (*Row, error) {
	path := fmt.Sprintf("/rest/v1/%s?select=%s&id=eq.%d", c.table, url.QueryEscape(selectColumns), id)

	var rows []Row
	if err := c.httpClient.GetJSON(ctx, path, &rows); err != nil {
		return nil, fmt.Errorf("ニュースの取得に失敗: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// UpdateRewrite は指定されたURLの行にリライト結果を書き込む。
// 一致する行がない場合はErrNotFoundを返す。
func (c *Client) UpdateRewrite(ctx context.Context, newsURL, titleModified, contentModified string) error {
	path := fmt.Sprintf("/rest/v1/%s?url=eq.%s", c.table, url.QueryEscape(newsURL))
	body := map[string]string{
		"title_modified":   titleModified,
		"content_modified": contentModified,
	}

	var updated []Row
	if err := c.httpClient.PatchJSON(ctx, path, body, &updated); err != nil {
		return fmt.Errorf("リライト結果の保存に失敗: %w", err)
	}
	if len(updated) == 0 {
		return fmt.Errorf("リライト結果の保存に失敗: URLに一致する行がない: %w", ErrNotFound)
	}
	return nil
}

// Ping はSupabaseへの接続を確認する。1行だけ取得を試みる。
func (c *Client) Ping(ctx context.Context) error {
	path := fmt.Sprintf("/rest/v1/%s?select=id&limit=1", c.table)

	var rows []struct {
		ID int64 `json:"id"`
	}
	if err := c.httpClient.GetJSON(ctx, path, &rows); err != nil {
		return fmt.Errorf("Supabaseへの接続確認に失敗: %w", err)
	}
	return nil
}
