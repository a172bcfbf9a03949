package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/newshub/internal/rewrite"
	"github.com/nao1215/newshub/pkg/event"
)

// handleAIRewrite は選択されたニュースをOpenAI APIでリライトするハンドラを返す。
// 記事ごとに逐次処理し、一部の失敗があっても残りの処理を継続する。
func (s *Server) handleAIRewrite() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.rewriter.Available() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "OpenAI APIキーが設定されていません"})
			return
		}

		var req struct {
			NewsItems     []rewrite.Item   `json:"news_items"`
			SystemPrompts []rewrite.Prompt `json:"system_prompts"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}
		if len(req.NewsItems) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リライト対象がありません"})
			return
		}

		// リクエストでSystem Promptを指定しない場合は保存済みのものを使う
		prompts := req.SystemPrompts
		if len(prompts) == 0 {
			stored, err := s.queries.ListSystemPrompts(c.Request.Context())
			if err != nil {
				s.logger.Error().Err(err).Msg("System Promptの取得に失敗した")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "System Promptの取得に失敗しました"})
				return
			}
			for _, p := range stored {
				prompts = append(prompts, rewrite.Prompt{Name: p.Name, Prompt: p.Prompt})
			}
		}
		if len(prompts) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "System Promptが1件も設定されていません"})
			return
		}

		summary := s.rewriter.Rewrite(c.Request.Context(), req.NewsItems, prompts)

		for _, r := range summary.Results {
			if r.Success {
				s.recordEvent(c.Request.Context(), r.URL, event.AggregateTypeNews, event.TypeNewsRewritten,
					event.NewsRewrittenData{URL: r.URL, Model: s.rewriter.Model()})
				continue
			}
			s.recordEvent(c.Request.Context(), r.URL, event.AggregateTypeNews, event.TypeNewsRewriteFailed,
				event.NewsRewriteFailedData{URL: r.URL, Reason: r.Error})
		}

		c.JSON(http.StatusOK, summary)
	}
}
