package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// eventResponse は活動イベントのAPIレスポンス。
type eventResponse struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	CreatedAt     time.Time       `json:"created_at"`
}

// handleListEvents は活動イベントの一覧を返すハンドラを返す。
// sinceクエリパラメータ（RFC3339）以降のイベントを古い順に返す。省略時は過去24時間。
func (s *Server) handleListEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		since := time.Now().Add(-24 * time.Hour)
		if raw := c.Query("since"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "sinceはRFC3339形式で指定してください"})
				return
			}
			since = parsed
		}

		events, err := s.queries.ListEventsSince(c.Request.Context(), since)
		if err != nil {
			s.logger.Error().Err(err).Msg("イベント一覧の取得に失敗した")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの取得に失敗しました"})
			return
		}

		responses := make([]eventResponse, 0, len(events))
		for _, e := range events {
			responses = append(responses, eventResponse{
				ID:            e.ID,
				AggregateID:   e.AggregateID,
				AggregateType: e.AggregateType,
				EventType:     e.EventType,
				Data:          json.RawMessage(e.Data),
				CreatedAt:     e.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}
