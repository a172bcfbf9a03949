// Package news はSupabaseから取得したニュース行のフィルタリングと整形を提供する。
package news

import (
	"encoding/json"
	"strings"

	"github.com/nao1215/newshub/internal/supabase"
)

// Item はAPIレスポンスとして返すニュース記事。
type Item struct {
	// ID は記事の一意識別子。
	ID int64 `json:"id"`
	// TitleTranslated は翻訳済みのタイトル。
	TitleTranslated string `json:"title_translated"`
	// ContentTranslated は翻訳済みの本文。
	ContentTranslated string `json:"content_translated"`
	// Images は画像情報（JSON文字列に正規化済み）。
	Images string `json:"images"`
	// SourceWebsite はニュースの来源サイトURL。
	SourceWebsite string `json:"sourceWebsite"`
	// URL はニュース記事のURL。
	URL string `json:"url"`
	// TitleModified はAIがリライトしたタイトル。
	TitleModified string `json:"title_modified"`
	// ContentModified はAIがリライトした本文。
	ContentModified string `json:"content_modified"`
}

// NormalizeImages はimagesカラムの生のJSON値を文字列に正規化する。
// 配列・オブジェクトはコンパクトなJSON文字列に変換する。
// 2番目の戻り値は値が空でないかどうかを表す。
func NormalizeImages(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		// 解析できない値はそのまま文字列として扱う
		s := strings.TrimSpace(string(raw))
		return s, s != ""
	}

	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	case []any:
		if len(v) == 0 {
			return "", false
		}
	case map[string]any:
		if len(v) == 0 {
			return "", false
		}
	}

	compact, err := json.Marshal(value)
	if err != nil {
		return "", false
	}
	return string(compact), true
}

// FromRow はSupabaseの行をAPIレスポンス用のItemに変換する。
// imagesの空判定は行わない（単一記事取得用）。
func FromRow(row supabase.Row) Item {
	images, _ := NormalizeImages(row.Images)
	return Item{
		ID:                row.ID,
		TitleTranslated:   row.TitleTranslated,
		ContentTranslated: row.ContentTranslated,
		Images:            images,
		SourceWebsite:     row.SourceWebsite,
		URL:               row.URL,
		TitleModified:     row.TitleModified,
		ContentModified:   row.ContentModified,
	}
}

// Filter は配信対象のニュースだけを抽出する。
// 来源サイトが許可リストに含まれ、かつimagesが空でない行のみを返す。
func Filter(rows []supabase.Row, allowedSources []string) []Item {
	allowed := make(map[string]struct{}, len(allowedSources))
	for _, s := range allowedSources {
		allowed[s] = struct{}{}
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		if _, ok := allowed[row.SourceWebsite]; !ok {
			continue
		}

		images, ok := NormalizeImages(row.Images)
		if !ok {
			continue
		}

		item := FromRow(row)
		item.Images = images
		items = append(items, item)
	}
	return items
}
