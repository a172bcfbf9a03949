package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/newshub/internal/news"
	"github.com/nao1215/newshub/internal/supabase"
)

// handleListNews は配信対象のニュース一覧を返すハンドラを返す。
// 許可された来源サイトかつ画像を持つ記事のみを返す。
func (s *Server) handleListNews() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := s.news.ListNews(c.Request.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("ニュース一覧の取得に失敗した")
			c.JSON(http.StatusBadGateway, gin.H{"error": "ニュースの取得に失敗しました"})
			return
		}

		items := news.Filter(rows, s.cfg.News.AllowedSources)
		if items == nil {
			items = []news.Item{}
		}
		c.JSON(http.StatusOK, items)
	}
}

// handleGetNews は指定されたIDのニュースを返すハンドラを返す。
func (s *Server) handleGetNews() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "IDが不正です"})
			return
		}

		row, err := s.news.GetNewsByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, supabase.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "ニュースが見つかりません"})
				return
			}
			s.logger.Error().Err(err).Int64("id", id).Msg("ニュースの取得に失敗した")
			c.JSON(http.StatusBadGateway, gin.H{"error": "ニュースの取得に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, news.FromRow(*row))
	}
}
