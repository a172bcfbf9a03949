package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/newshub/internal/publish"
	"github.com/nao1215/newshub/pkg/event"
)

// publishRequest は配信エンドポイントの共通リクエストボディ。
type publishRequest struct {
	// Title は記事のタイトル。
	Title string `json:"title"`
	// Content は記事の本文。
	Content string `json:"content"`
	// Link は元記事のURL。配信結果のイベント記録にも使用する。
	Link string `json:"link"`
	// ImageURL は添付画像のURL。
	ImageURL string `json:"image_url"`
	// Platforms は一括配信時の配信先。省略時は登録済みの全プラットフォーム。
	Platforms []string `json:"platforms"`
}

// toPost は配信用の記事に変換する。
func (r publishRequest) toPost() publish.Post {
	return publish.Post{
		Title:    r.Title,
		Content:  r.Content,
		Link:     r.Link,
		ImageURL: r.ImageURL,
	}
}

// bindPublishRequest は配信リクエストを検証付きで読み込む。
func bindPublishRequest(c *gin.Context) (publishRequest, bool) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
		return req, false
	}
	if req.Title == "" || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "titleとcontentは必須です"})
		return req, false
	}
	return req, true
}

// handlePlatformPublish は単一プラットフォームへ配信するハンドラを返す。
func (s *Server) handlePlatformPublish(platform string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindPublishRequest(c)
		if !ok {
			return
		}

		results := s.dispatcher.Dispatch(c.Request.Context(), []string{platform}, req.toPost())
		s.recordPublishResults(c.Request.Context(), req.Link, results)

		result := results[0]
		if !result.Success {
			c.JSON(http.StatusBadGateway, result)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// handleFanoutPublish は複数プラットフォームへ一括配信するハンドラを返す。
// 一部の失敗があっても残りの配信を継続し、結果を集約して返す。
func (s *Server) handleFanoutPublish() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindPublishRequest(c)
		if !ok {
			return
		}

		platforms := req.Platforms
		if len(platforms) == 0 {
			platforms = s.dispatcher.Platforms()
		}
		if len(platforms) == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "配信先プラットフォームが設定されていません"})
			return
		}

		results := s.dispatcher.Dispatch(c.Request.Context(), platforms, req.toPost())
		s.recordPublishResults(c.Request.Context(), req.Link, results)

		succeeded := 0
		for _, r := range results {
			if r.Success {
				succeeded++
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"total":   len(results),
			"success": succeeded,
			"failed":  len(results) - succeeded,
			"results": results,
		})
	}
}

// recordPublishResults は配信結果を活動イベントとして記録する。
func (s *Server) recordPublishResults(ctx context.Context, link string, results []publish.Result) {
	aggregateID := link
	if aggregateID == "" {
		aggregateID = "unknown"
	}
	for _, r := range results {
		if r.Success {
			s.recordEvent(ctx, aggregateID, event.AggregateTypeNews, event.TypeNewsPublished,
				event.NewsPublishedData{Platform: r.Platform, PostID: r.PostID, PostURL: r.PostURL})
			continue
		}
		s.recordEvent(ctx, aggregateID, event.AggregateTypeNews, event.TypeNewsPublishFailed,
			event.NewsPublishFailedData{Platform: r.Platform, Reason: r.Error})
	}
}
