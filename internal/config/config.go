// Package config はYAMLファイルと環境変数から読み込む型付きのアプリケーション設定を提供する。
// 接続先や公開設定はYAMLに、資格情報は環境変数にのみ置く。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定。
type Config struct {
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	Supabase  Supabase  `yaml:"supabase"`
	OpenAI    OpenAI    `yaml:"openai"`
	News      News      `yaml:"news"`
	WordPress WordPress `yaml:"wordpress"`
	Pixnet    Pixnet    `yaml:"pixnet"`
	Facebook  Facebook  `yaml:"facebook"`
	Threads   Threads   `yaml:"threads"`
	Instagram Instagram `yaml:"instagram"`
	Token     Token     `yaml:"token"`
	Log       Log       `yaml:"log"`
}

// Server はHTTPサーバーの設定。
type Server struct {
	// Port はサーバーのリッスンポート。
	Port string `yaml:"port"`
	// FrontendOrigins はCORSで許可するフロントエンドのオリジン。
	FrontendOrigins []string `yaml:"frontend_origins"`
	// JWTSecret はJWT署名用の秘密鍵。環境変数 JWT_SECRET から読み込む。
	JWTSecret string `yaml:"-"`
}

// Database はローカルの台帳データベース（SQLite）の設定。
type Database struct {
	// Path はSQLiteファイルのパス。
	Path string `yaml:"path"`
}

// Supabase はニュースを保持するSupabase（PostgREST）の設定。
type Supabase struct {
	// URL はSupabaseプロジェクトのURL。環境変数 SUPABASE_URL でも上書きできる。
	URL string `yaml:"url"`
	// Table はニュースを保持するテーブル名。環境変数 SUPABASE_TABLE でも上書きできる。
	Table string `yaml:"table"`
	// Key はSupabaseのAPIキー。環境変数 SUPABASE_KEY から読み込む。
	Key string `yaml:"-"`
}

// OpenAI はAIリライトに使用するOpenAI APIの設定。
type OpenAI struct {
	// Model はリライトに使用するモデル名。
	Model string `yaml:"model"`
	// BaseURL はAPIのベースURL。空の場合は公式エンドポイントを使用する。
	BaseURL string `yaml:"base_url"`
	// APIKey はOpenAIのAPIキー。環境変数 OPENAI_API_KEY から読み込む。
	APIKey string `yaml:"-"`
}

// News はニュース取得時のフィルタリング設定。
type News struct {
	// AllowedSources は配信対象とするニュース来源サイトのURL一覧。
	AllowedSources []string `yaml:"allowed_sources"`
}

// WordPress はWordPress REST APIの設定。
type WordPress struct {
	// BaseURL はWordPressサイトのURL。
	BaseURL string `yaml:"base_url"`
	// Username はアプリケーションパスワードのユーザー名。
	Username string `yaml:"username"`
	// AppPassword はアプリケーションパスワード。環境変数 WORDPRESS_APP_PASSWORD から読み込む。
	AppPassword string `yaml:"-"`
}

// Pixnet はPixnetブログAPIの設定。
type Pixnet struct {
	// BaseURL はPixnet APIのベースURL。
	BaseURL string `yaml:"base_url"`
	// AccessToken はPixnetのアクセストークン。環境変数 PIXNET_ACCESS_TOKEN から読み込む。
	AccessToken string `yaml:"-"`
}

// Facebook はFacebook Graph APIの設定。
type Facebook struct {
	// GraphURL はGraph APIのベースURL。
	GraphURL string `yaml:"graph_url"`
	// APIVersion はGraph APIのバージョン。
	APIVersion string `yaml:"api_version"`
	// PageID は投稿先のFacebookページID。
	PageID string `yaml:"page_id"`
	// AppID はトークン更新に使用するアプリID。環境変数 FACEBOOK_APP_ID から読み込む。
	AppID string `yaml:"-"`
	// AppSecret はトークン更新に使用するアプリシークレット。環境変数 FACEBOOK_APP_SECRET から読み込む。
	AppSecret string `yaml:"-"`
	// SeedAccessToken は台帳初期化に使う長期トークン。環境変数 FACEBOOK_ACCESS_TOKEN から読み込む。
	SeedAccessToken string `yaml:"-"`
}

// Threads はThreads APIの設定。
type Threads struct {
	// GraphURL はThreads APIのベースURL。
	GraphURL string `yaml:"graph_url"`
	// APIVersion はAPIのバージョン。
	APIVersion string `yaml:"api_version"`
	// UserID は投稿先のThreadsユーザーID。
	UserID string `yaml:"user_id"`
	// SeedAccessToken は台帳初期化に使う長期トークン。環境変数 THREADS_ACCESS_TOKEN から読み込む。
	SeedAccessToken string `yaml:"-"`
}

// Instagram はInstagram Graph APIの設定。
type Instagram struct {
	// GraphURL はGraph APIのベースURL。
	GraphURL string `yaml:"graph_url"`
	// APIVersion はAPIのバージョン。
	APIVersion string `yaml:"api_version"`
	// UserID は投稿先のInstagramビジネスアカウントID。
	UserID string `yaml:"user_id"`
	// SeedAccessToken は台帳初期化に使う長期トークン。環境変数 INSTAGRAM_ACCESS_TOKEN から読み込む。
	SeedAccessToken string `yaml:"-"`
}

// Token は長期アクセストークンのライフサイクル設定。
type Token struct {
	// RefreshAfterDays は発行から何日で更新を行うか。長期トークンは60日有効のため59日を既定とする。
	RefreshAfterDays int `yaml:"refresh_after_days"`
	// LifetimeDays は長期トークンの有効日数。
	LifetimeDays int `yaml:"lifetime_days"`
}

// Log はログ出力の設定。
type Log struct {
	// Level はログレベル（debug/info/warn/error）。
	Level string `yaml:"level"`
}

// Default は既定値の設定を返す。
func Default() *Config {
	return &Config{
		Server: Server{
			Port: "8080",
			FrontendOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
			},
			JWTSecret: "dev-secret-key",
		},
		Database: Database{Path: "newshub.db"},
		Supabase: Supabase{Table: "news"},
		OpenAI:   OpenAI{Model: "gpt-5-nano"},
		News: News{
			AllowedSources: []string{
				"https://www.thenationalnews.com/",
				"https://www.bbc.com/news/world/middle_east",
				"https://www.bbc.com/thai",
				"https://www.freemalaysiatoday.com/",
				"https://news.web.nhk/newsweb",
				"https://jen.jiji.com/",
				"https://en.yna.co.kr/",
				"https://news.kbs.co.kr/news/pc/main/main.html",
				"https://www.caixin.com/",
				"https://saudigazette.com.sa/",
			},
		},
		Pixnet: Pixnet{BaseURL: "https://emma.pixnet.cc"},
		Facebook: Facebook{
			GraphURL:   "https://graph.facebook.com",
			APIVersion: "v21.0",
		},
		Threads: Threads{
			GraphURL:   "https://graph.threads.net",
			APIVersion: "v1.0",
		},
		Instagram: Instagram{
			GraphURL:   "https://graph.facebook.com",
			APIVersion: "v21.0",
		},
		Token: Token{
			RefreshAfterDays: 59,
			LifetimeDays:     60,
		},
		Log: Log{Level: "info"},
	}
}

// Load はYAMLファイルと環境変数から設定を読み込む。
// ファイルが存在しない場合は既定値と環境変数のみで構成する。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("設定ファイルの解析に失敗: %w", err)
			}
		case os.IsNotExist(err):
			// 設定ファイルなしでも環境変数だけで起動できる
		default:
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv は環境変数から資格情報と上書き設定を読み込む。
func (c *Config) applyEnv() {
	setIfEnv(&c.Server.JWTSecret, "JWT_SECRET")
	setIfEnv(&c.Supabase.URL, "SUPABASE_URL")
	setIfEnv(&c.Supabase.Table, "SUPABASE_TABLE")
	setIfEnv(&c.Supabase.Key, "SUPABASE_KEY")
	setIfEnv(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setIfEnv(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setIfEnv(&c.WordPress.AppPassword, "WORDPRESS_APP_PASSWORD")
	setIfEnv(&c.Pixnet.AccessToken, "PIXNET_ACCESS_TOKEN")
	setIfEnv(&c.Facebook.AppID, "FACEBOOK_APP_ID")
	setIfEnv(&c.Facebook.AppSecret, "FACEBOOK_APP_SECRET")
	setIfEnv(&c.Facebook.SeedAccessToken, "FACEBOOK_ACCESS_TOKEN")
	setIfEnv(&c.Threads.SeedAccessToken, "THREADS_ACCESS_TOKEN")
	setIfEnv(&c.Instagram.SeedAccessToken, "INSTAGRAM_ACCESS_TOKEN")
}

// setIfEnv は環境変数が設定されている場合のみ値を上書きする。
func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
