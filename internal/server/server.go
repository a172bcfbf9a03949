// Package server はニュース配信パイプラインのHTTP APIサーバーを提供する。
// Supabaseのニュース取得、AIリライト、外部プラットフォームへの配信、
// 長期トークンの管理をブラウザのフロントエンドに対して公開する。
package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/nao1215/newshub/internal/config"
	"github.com/nao1215/newshub/internal/metrics"
	"github.com/nao1215/newshub/internal/publish"
	"github.com/nao1215/newshub/internal/rewrite"
	"github.com/nao1215/newshub/internal/store"
	"github.com/nao1215/newshub/internal/supabase"
	"github.com/nao1215/newshub/internal/token"
	"github.com/nao1215/newshub/pkg/event"
	"github.com/nao1215/newshub/pkg/middleware"
)

// Server はニュース配信APIのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はアプリケーション設定。
	cfg *config.Config
	// logger は構造化ログの出力先。
	logger zerolog.Logger
	// queries はローカル台帳（SQLite）のクエリ実行オブジェクト。
	queries *store.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// news はニュースを保持するSupabaseへのクライアント。
	news *supabase.Client
	// rewriter はOpenAI APIによるリライト処理。
	rewriter *rewrite.Rewriter
	// dispatcher は外部プラットフォームへの配信を統括する。
	dispatcher *publish.Dispatcher
	// tokens は長期アクセストークンの台帳管理。
	tokens *token.Manager
}

// NewServer は新しいAPIサーバーを生成する。
func NewServer(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.Database.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if err := store.InitSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	queries := store.New(sqlDB)
	newsClient := supabase.New(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Supabase.Table, logger)
	rewriter := rewrite.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, newsClient, logger)
	tokens := token.NewManager(queries, cfg, logger)

	dispatcher := publish.NewDispatcher(logger)
	registerPublishers(dispatcher, cfg, tokens, logger)

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.Server.FrontendOrigins))

	s := &Server{
		router:     router,
		cfg:        cfg,
		logger:     logger,
		queries:    queries,
		db:         sqlDB,
		news:       newsClient,
		rewriter:   rewriter,
		dispatcher: dispatcher,
		tokens:     tokens,
	}
	s.setupRoutes()

	return s, nil
}

// registerPublishers は設定済みのプラットフォームのみを配信先として登録する。
func registerPublishers(d *publish.Dispatcher, cfg *config.Config, tokens *token.Manager, logger zerolog.Logger) {
	if cfg.WordPress.BaseURL != "" && cfg.WordPress.Username != "" {
		d.Register(publish.NewWordPress(cfg.WordPress.BaseURL, cfg.WordPress.Username, cfg.WordPress.AppPassword))
	}
	if cfg.Pixnet.AccessToken != "" {
		d.Register(publish.NewPixnet(cfg.Pixnet.BaseURL, cfg.Pixnet.AccessToken))
	}
	if cfg.Facebook.PageID != "" {
		d.Register(publish.NewFacebook(cfg.Facebook.GraphURL, cfg.Facebook.APIVersion, cfg.Facebook.PageID, tokens))
	}
	if cfg.Threads.UserID != "" {
		d.Register(publish.NewThreads(cfg.Threads.GraphURL, cfg.Threads.APIVersion, cfg.Threads.UserID, tokens))
	}
	if cfg.Instagram.UserID != "" {
		d.Register(publish.NewInstagram(cfg.Instagram.GraphURL, cfg.Instagram.APIVersion, cfg.Instagram.UserID, tokens))
	}
	logger.Info().Strs("platforms", d.Platforms()).Msg("配信先プラットフォームを登録した")
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Server.Port))
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 認証エンドポイント（認証不要）
	auth := s.router.Group("/auth")
	{
		// 開発用トークン発行
		auth.POST("/dev-token", s.handleDevToken())
	}

	// 認証必須のAPIエンドポイント
	api := s.router.Group("/api")
	api.Use(middleware.JWTAuth(s.cfg.Server.JWTSecret))
	{
		// ニュース
		api.GET("/news", s.handleListNews())
		api.GET("/news/:id", s.handleGetNews())

		// System Prompt
		api.GET("/prompts", s.handleListPrompts())
		api.POST("/prompts", s.handleCreatePrompt())
		api.DELETE("/prompts/:id", s.handleDeletePrompt())

		// AIリライト
		api.POST("/ai-rewrite", s.handleAIRewrite())

		// プラットフォーム別配信
		api.POST("/wordpress-publish", s.handlePlatformPublish("wordpress"))
		api.POST("/pixnet-publish", s.handlePlatformPublish("pixnet"))
		api.POST("/facebook-publish", s.handlePlatformPublish("facebook"))
		api.POST("/threads-publish", s.handlePlatformPublish("threads"))
		api.POST("/instagram-publish", s.handlePlatformPublish("instagram"))

		// 全プラットフォーム一括配信
		api.POST("/publish", s.handleFanoutPublish())

		// トークン管理
		api.GET("/tokens", s.handleTokenStatus())
		api.POST("/tokens/:platform/refresh", s.handleTokenRefresh())

		// 活動イベントログ
		api.GET("/events", s.handleListEvents())
	}

	// ヘルスチェック（Supabaseへの疎通確認を含む）
	s.router.GET("/health", s.handleHealth())

	// Prometheusメトリクス
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// recordEvent は活動イベントを台帳に記録する。
// 記録の失敗は呼び出し元の処理を失敗させない。
func (s *Server) recordEvent(ctx context.Context, aggregateID string, aggregateType event.AggregateType, eventType event.Type, data any) {
	e, err := event.New(aggregateID, aggregateType, eventType, data)
	if err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("イベントの生成に失敗した")
		return
	}
	if err := s.queries.AppendEvent(ctx, store.AppendEventParams{
		ID:            e.ID,
		AggregateID:   e.AggregateID,
		AggregateType: string(e.AggregateType),
		EventType:     string(e.EventType),
		Data:          string(e.Data),
		CreatedAt:     e.CreatedAt,
	}); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("イベントの記録に失敗した")
	}
}
