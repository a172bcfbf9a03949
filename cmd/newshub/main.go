// ニュース配信APIサーバーのエントリポイント。
// Supabaseのニュース取得、OpenAI APIによるリライト、
// WordPress・Pixnet・Facebook・Threads・Instagramへの配信を担当する。
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/nao1215/newshub/internal/config"
	"github.com/nao1215/newshub/internal/logging"
	"github.com/nao1215/newshub/internal/server"
)

func main() {
	// .envは開発用。存在しなくても起動できる。
	if err := godotenv.Load(); err == nil {
		log.Println(".envを読み込みました")
	}

	configPath := os.Getenv("NEWSHUB_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}

	logger := logging.New(cfg.Log.Level)

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		log.Fatalf("APIサーバーの初期化に失敗: %v", err)
	}
	defer func() { _ = srv.Close() }()

	logger.Info().Str("port", cfg.Server.Port).Msg("newshub APIサーバーを起動します")
	if err := srv.Run(); err != nil {
		log.Fatalf("APIサーバーの起動に失敗: %v", err)
	}
}
