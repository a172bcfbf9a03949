// Package publish はリライト済みニュースを外部プラットフォームへ配信する。
// 配信先はWordPress・Pixnet・Facebook・Threads・Instagramで、
// 一部の失敗が残りの配信を止めないように逐次で処理し結果を集約する。
package publish

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/nao1215/newshub/internal/metrics"
)

// Post は配信する記事。
type Post struct {
	// Title は記事のタイトル。
	Title string
	// Content は記事の本文。
	Content string
	// Link は元記事のURL。
	Link string
	// ImageURL は添付画像のURL。空の場合はテキストのみの投稿になる。
	ImageURL string
}

// Result は1プラットフォームへの配信結果。
type Result struct {
	// Platform は配信先プラットフォーム名。
	Platform string `json:"platform"`
	// Success は配信に成功したかどうか。
	Success bool `json:"success"`
	// PostID はプラットフォーム側の投稿ID。
	PostID string `json:"post_id,omitempty"`
	// PostURL は投稿のURL。プラットフォームが返す場合のみ設定される。
	PostURL string `json:"post_url,omitempty"`
	// Error は失敗時の理由。
	Error string `json:"error,omitempty"`
}

// Publisher は単一プラットフォームへの配信を行う。
type Publisher interface {
	// Platform は配信先プラットフォーム名を返す。
	Platform() string
	// Publish は記事を配信し、投稿IDと投稿URLを返す。
	Publish(ctx context.Context, post Post) (postID, postURL string, err error)
}

// TokenSource は配信時に使用するアクセストークンを提供する。
// トークンの有効期限管理と自動更新は提供側が行う。
type TokenSource interface {
	AccessToken(ctx context.Context, platform string) (string, error)
}

// Dispatcher は複数プラットフォームへの配信を統括する。
// 配信は逐次で行い、失敗しても残りのプラットフォームへの配信を継続する。
type Dispatcher struct {
	publishers map[string]Publisher
	logger     zerolog.Logger
}

// NewDispatcher は新しいDispatcherを生成する。
func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		publishers: make(map[string]Publisher),
		logger:     logger,
	}
}

// Register は配信先を登録する。
func (d *Dispatcher) Register(p Publisher) {
	d.publishers[p.Platform()] = p
}

// Registered は指定されたプラットフォームが登録済みかどうかを返す。
func (d *Dispatcher) Registered(platform string) bool {
	_, ok := d.publishers[platform]
	return ok
}

// Platforms は登録済みのプラットフォーム名を名前順に返す。
func (d *Dispatcher) Platforms() []string {
	platforms := make([]string, 0, len(d.publishers))
	for name := range d.publishers {
		platforms = append(platforms, name)
	}
	sort.Strings(platforms)
	return platforms
}

// Dispatch は指定されたプラットフォームへ順に配信し、結果を集約して返す。
// 未登録のプラットフォームは失敗として結果に含める。
func (d *Dispatcher) Dispatch(ctx context.Context, platforms []string, post Post) []Result {
	results := make([]Result, 0, len(platforms))
	for _, platform := range platforms {
		p, ok := d.publishers[platform]
		if !ok {
			d.logger.Warn().Str("platform", platform).Msg("未登録のプラットフォームへの配信が要求された")
			metrics.PublishTotal.WithLabelValues(platform, metrics.ResultLabel(false)).Inc()
			results = append(results, Result{
				Platform: platform,
				Error:    "未対応または未設定のプラットフォームです",
			})
			continue
		}

		postID, postURL, err := p.Publish(ctx, post)
		if err != nil {
			d.logger.Error().Err(err).Str("platform", platform).Msg("配信に失敗した")
			metrics.PublishTotal.WithLabelValues(platform, metrics.ResultLabel(false)).Inc()
			results = append(results, Result{Platform: platform, Error: err.Error()})
			continue
		}

		d.logger.Info().
			Str("platform", platform).
			Str("post_id", postID).
			Msg("配信に成功した")
		metrics.PublishTotal.WithLabelValues(platform, metrics.ResultLabel(true)).Inc()
		results = append(results, Result{
			Platform: platform,
			Success:  true,
			PostID:   postID,
			PostURL:  postURL,
		})
	}
	return results
}

// truncateRunes は文字数制限のあるプラットフォーム向けに本文を切り詰める。
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
