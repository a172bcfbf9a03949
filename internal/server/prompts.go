package server

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nao1215/newshub/internal/store"
	"github.com/nao1215/newshub/pkg/event"
)

// promptResponse はSystem PromptのAPIレスポンス。
type promptResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

// toPromptResponse はストアのレコードをAPIレスポンスに変換する。
func toPromptResponse(p store.SystemPrompt) promptResponse {
	return promptResponse{
		ID:        p.ID,
		Name:      p.Name,
		Prompt:    p.Prompt,
		CreatedAt: p.CreatedAt,
	}
}

// handleListPrompts はSystem Promptの一覧を返すハンドラを返す。
func (s *Server) handleListPrompts() gin.HandlerFunc {
	return func(c *gin.Context) {
		prompts, err := s.queries.ListSystemPrompts(c.Request.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("System Prompt一覧の取得に失敗した")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "System Promptの取得に失敗しました"})
			return
		}

		responses := make([]promptResponse, 0, len(prompts))
		for _, p := range prompts {
			responses = append(responses, toPromptResponse(p))
		}
		c.JSON(http.StatusOK, responses)
	}
}

// handleCreatePrompt はSystem Promptを作成するハンドラを返す。
func (s *Server) handleCreatePrompt() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name   string `json:"name"`
			Prompt string `json:"prompt"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}
		if req.Name == "" || req.Prompt == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nameとpromptは必須です"})
			return
		}

		id := uuid.New().String()
		if err := s.queries.CreateSystemPrompt(c.Request.Context(), store.CreateSystemPromptParams{
			ID:     id,
			Name:   req.Name,
			Prompt: req.Prompt,
		}); err != nil {
			s.logger.Error().Err(err).Msg("System Promptの作成に失敗した")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "System Promptの作成に失敗しました"})
			return
		}

		s.recordEvent(c.Request.Context(), id, event.AggregateTypePrompt, event.TypePromptCreated,
			event.PromptCreatedData{Name: req.Name})

		created, err := s.queries.GetSystemPromptByID(c.Request.Context(), id)
		if err != nil {
			s.logger.Error().Err(err).Msg("作成したSystem Promptの取得に失敗した")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "System Promptの取得に失敗しました"})
			return
		}
		c.JSON(http.StatusCreated, toPromptResponse(created))
	}
}

// handleDeletePrompt はSystem Promptを削除するハンドラを返す。
func (s *Server) handleDeletePrompt() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		prompt, err := s.queries.GetSystemPromptByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "System Promptが見つかりません"})
				return
			}
			s.logger.Error().Err(err).Msg("System Promptの取得に失敗した")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "System Promptの取得に失敗しました"})
			return
		}

		if err := s.queries.DeleteSystemPrompt(c.Request.Context(), id); err != nil {
			s.logger.Error().Err(err).Msg("System Promptの削除に失敗した")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "System Promptの削除に失敗しました"})
			return
		}

		s.recordEvent(c.Request.Context(), id, event.AggregateTypePrompt, event.TypePromptDeleted,
			event.PromptDeletedData{Name: prompt.Name})

		c.JSON(http.StatusOK, gin.H{"message": "削除しました"})
	}
}
