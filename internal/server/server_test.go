package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/nao1215/newshub/internal/config"
	"github.com/nao1215/newshub/internal/publish"
	"github.com/nao1215/newshub/internal/rewrite"
	"github.com/nao1215/newshub/internal/store"
	"github.com/nao1215/newshub/internal/supabase"
	"github.com/nao1215/newshub/internal/token"
	"github.com/nao1215/newshub/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testJWTSecret はテスト用のJWT署名秘密鍵。
const testJWTSecret = "test-secret-key"

// newTestServer はテスト用のAPIサーバーを生成する。
// インメモリSQLiteを使用し、SupabaseはsupabaseURLのスタブを参照する。
func newTestServer(t *testing.T, supabaseURL string) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Server.JWTSecret = testJWTSecret
	cfg.Supabase.URL = supabaseURL

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDB接続に失敗: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := store.InitSchema(sqlDB); err != nil {
		t.Fatalf("スキーマ初期化に失敗: %v", err)
	}

	logger := zerolog.New(io.Discard)
	queries := store.New(sqlDB)
	newsClient := supabase.New(supabaseURL, "test-key", "news", logger)

	s := &Server{
		router:     gin.New(),
		cfg:        cfg,
		logger:     logger,
		queries:    queries,
		db:         sqlDB,
		news:       newsClient,
		rewriter:   rewrite.New("", "", cfg.OpenAI.Model, newsClient, logger),
		dispatcher: publish.NewDispatcher(logger),
		tokens:     token.NewManager(queries, cfg, logger),
	}
	s.setupRoutes()

	return s
}

// newSupabaseStub はニューステーブルのスタブサーバーを生成する。
// GETには固定のJSONを返し、PATCHには一致した行を返す。
func newSupabaseStub(t *testing.T, listBody string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPatch {
			fmt.Fprint(w, `[{"id":1}]`)
			return
		}
		fmt.Fprint(w, listBody)
	}))
	t.Cleanup(srv.Close)

	return srv
}

// doRequest はテスト用JWTを付与してリクエストを実行する。
func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	jwt, err := middleware.GenerateJWT(testJWTSecret, "operator-1", "dev@newshub.local")
	if err != nil {
		t.Fatalf("テスト用JWT生成に失敗: %v", err)
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+jwt)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// stubPublisher は固定の結果を返すテスト用のPublisher。
type stubPublisher struct {
	name string
	fail bool
}

func (p *stubPublisher) Platform() string { return p.name }

func (p *stubPublisher) Publish(_ context.Context, _ publish.Post) (string, string, error) {
	if p.fail {
		return "", "", fmt.Errorf("接続に失敗しました")
	}
	return p.name + "-1", "https://example.com/" + p.name + "/1", nil
}

// TestHandleDevToken は開発用トークン発行ハンドラのテスト。
func TestHandleDevToken(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, "http://localhost:19000")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/dev-token", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}

	var result map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("レスポンスのパースに失敗: %v", err)
	}
	if result["token"] == "" {
		t.Error("tokenフィールドが空")
	}
	if result["operator_id"] == "" {
		t.Error("operator_idフィールドが空")
	}
}

// TestJWTRequired は認証なしのAPIアクセスが拒否されることのテスト。
func TestJWTRequired(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, "http://localhost:19000")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestHandleListNews はニュース一覧取得ハンドラのテスト。
func TestHandleListNews(t *testing.T) {
	t.Parallel()

	t.Run("許可された来源サイトかつ画像がある記事のみ返すこと", func(t *testing.T) {
		t.Parallel()

		stub := newSupabaseStub(t, `[
			{"id":1,"title_translated":"配信対象","content_translated":"本文","images":["https://example.com/a.jpg"],"sourceWebsite":"https://www.bbc.com/thai","url":"https://example.com/news/1"},
			{"id":2,"title_translated":"画像なし","content_translated":"本文","images":[],"sourceWebsite":"https://www.bbc.com/thai","url":"https://example.com/news/2"},
			{"id":3,"title_translated":"非許可サイト","content_translated":"本文","images":["https://example.com/c.jpg"],"sourceWebsite":"https://unknown.example.com/","url":"https://example.com/news/3"}
		]`)
		s := newTestServer(t, stub.URL)

		w := doRequest(t, s, http.MethodGet, "/api/news", "")

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}

		var items []map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("件数: got %d, want 1", len(items))
		}
		if items[0]["title_translated"] != "配信対象" {
			t.Errorf("title_translated = %v", items[0]["title_translated"])
		}
	})

	t.Run("Supabaseへの接続に失敗した場合は502を返すこと", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)
		s := newTestServer(t, srv.URL)

		w := doRequest(t, s, http.MethodGet, "/api/news", "")

		if w.Code != http.StatusBadGateway {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadGateway)
		}
	})
}

// TestHandleGetNews は単一ニュース取得ハンドラのテスト。
func TestHandleGetNews(t *testing.T) {
	t.Parallel()

	t.Run("存在するIDの場合は記事を返すこと", func(t *testing.T) {
		t.Parallel()

		stub := newSupabaseStub(t, `[{"id":7,"title_translated":"記事","content_translated":"本文","images":"https://example.com/a.jpg","sourceWebsite":"https://www.bbc.com/thai","url":"https://example.com/news/7"}]`)
		s := newTestServer(t, stub.URL)

		w := doRequest(t, s, http.MethodGet, "/api/news/7", "")

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}

		var item map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &item); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if item["id"] != float64(7) {
			t.Errorf("id = %v, want 7", item["id"])
		}
	})

	t.Run("存在しないIDの場合は404を返すこと", func(t *testing.T) {
		t.Parallel()

		stub := newSupabaseStub(t, `[]`)
		s := newTestServer(t, stub.URL)

		w := doRequest(t, s, http.MethodGet, "/api/news/999", "")

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("IDが数値でない場合は400を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")

		w := doRequest(t, s, http.MethodGet, "/api/news/abc", "")

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestHandlePrompts はSystem Promptの作成・一覧・削除ハンドラのテスト。
func TestHandlePrompts(t *testing.T) {
	t.Parallel()

	t.Run("作成・一覧・削除が一連で動作すること", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")

		w := doRequest(t, s, http.MethodPost, "/api/prompts", `{"name":"編集方針","prompt":"簡潔に書くこと。"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("作成ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
		}

		var created map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		id, _ := created["id"].(string)
		if id == "" {
			t.Fatal("idフィールドが空")
		}

		w = doRequest(t, s, http.MethodGet, "/api/prompts", "")
		if w.Code != http.StatusOK {
			t.Fatalf("一覧ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		var prompts []map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &prompts); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if len(prompts) != 1 {
			t.Errorf("件数: got %d, want 1", len(prompts))
		}

		w = doRequest(t, s, http.MethodDelete, "/api/prompts/"+id, "")
		if w.Code != http.StatusOK {
			t.Fatalf("削除ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}

		// 作成と削除の活動イベントが記録されていること
		w = doRequest(t, s, http.MethodGet, "/api/events", "")
		if w.Code != http.StatusOK {
			t.Fatalf("イベント取得ステータスコード: got %d", w.Code)
		}
		var events []map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("イベント件数: got %d, want 2", len(events))
		}
		if events[0]["event_type"] != "PromptCreated" || events[1]["event_type"] != "PromptDeleted" {
			t.Errorf("イベント種別: %v, %v", events[0]["event_type"], events[1]["event_type"])
		}
	})

	t.Run("nameが空の場合は400を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")

		w := doRequest(t, s, http.MethodPost, "/api/prompts", `{"name":"","prompt":"本文"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("存在しないIDの削除は404を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")

		w := doRequest(t, s, http.MethodDelete, "/api/prompts/missing-id", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

// TestHandleAIRewrite はAIリライトハンドラのテスト。
func TestHandleAIRewrite(t *testing.T) {
	t.Parallel()

	t.Run("APIキー未設定の場合は503を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")

		w := doRequest(t, s, http.MethodPost, "/api/ai-rewrite", `{"news_items":[{"url":"https://example.com/1"}]}`)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})

	t.Run("リライト対象が空の場合は400を返すこと", func(t *testing.T) {
		t.Parallel()

		stub := newSupabaseStub(t, `[]`)
		s := newTestServer(t, stub.URL)
		s.rewriter = rewrite.New("sk-test", stub.URL+"/v1", "gpt-5-nano", s.news, s.logger)

		w := doRequest(t, s, http.MethodPost, "/api/ai-rewrite", `{"news_items":[]}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("System Promptが1件もない場合は400を返すこと", func(t *testing.T) {
		t.Parallel()

		var completions int
		openaiStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			completions++
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"choices":[]}`)
		}))
		t.Cleanup(openaiStub.Close)

		supabaseStub := newSupabaseStub(t, `[]`)
		s := newTestServer(t, supabaseStub.URL)
		s.rewriter = rewrite.New("sk-test", openaiStub.URL+"/v1", "gpt-5-nano", s.news, s.logger)

		w := doRequest(t, s, http.MethodPost, "/api/ai-rewrite",
			`{"news_items":[{"url":"https://example.com/1","title_translated":"元タイトル","content_translated":"元本文"}]}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
		if completions != 0 {
			t.Errorf("OpenAIが呼ばれるべきではない: %d回呼ばれた", completions)
		}
	})

	t.Run("リライト結果と活動イベントが記録されること", func(t *testing.T) {
		t.Parallel()

		openaiStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"{\"title_modified\":\"新タイトル\",\"content_modified\":\"新本文\"}"}}]}`)
		}))
		t.Cleanup(openaiStub.Close)

		supabaseStub := newSupabaseStub(t, `[]`)
		s := newTestServer(t, supabaseStub.URL)
		s.rewriter = rewrite.New("sk-test", openaiStub.URL+"/v1", "gpt-5-nano", s.news, s.logger)

		// リクエストでPromptを省略した場合は保存済みのものが使われる
		err := s.queries.CreateSystemPrompt(t.Context(), store.CreateSystemPromptParams{
			ID: "prompt-1", Name: "基本方針", Prompt: "です・ます調で書き直すこと",
		})
		if err != nil {
			t.Fatalf("System Promptの作成に失敗: %v", err)
		}

		w := doRequest(t, s, http.MethodPost, "/api/ai-rewrite",
			`{"news_items":[{"url":"https://example.com/1","title_translated":"元タイトル","content_translated":"元本文"}]}`)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}

		var summary map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if summary["total"] != float64(1) || summary["success"] != float64(1) {
			t.Errorf("summary = %v", summary)
		}

		w = doRequest(t, s, http.MethodGet, "/api/events", "")
		var events []map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if len(events) != 1 || events[0]["event_type"] != "NewsRewritten" {
			t.Errorf("events = %v", events)
		}
	})
}

// TestHandlePlatformPublish は単一プラットフォーム配信ハンドラのテスト。
func TestHandlePlatformPublish(t *testing.T) {
	t.Parallel()

	t.Run("配信成功時は結果を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")
		s.dispatcher.Register(&stubPublisher{name: "wordpress"})

		w := doRequest(t, s, http.MethodPost, "/api/wordpress-publish",
			`{"title":"見出し","content":"本文","link":"https://example.com/news/1"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}

		var result map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if result["success"] != true || result["post_id"] != "wordpress-1" {
			t.Errorf("result = %v", result)
		}
	})

	t.Run("配信失敗時は502を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")
		s.dispatcher.Register(&stubPublisher{name: "wordpress", fail: true})

		w := doRequest(t, s, http.MethodPost, "/api/wordpress-publish", `{"title":"見出し","content":"本文"}`)

		if w.Code != http.StatusBadGateway {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadGateway)
		}
	})

	t.Run("titleが空の場合は400を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")

		w := doRequest(t, s, http.MethodPost, "/api/wordpress-publish", `{"title":"","content":"本文"}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("未設定のプラットフォームへの配信は502を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")

		w := doRequest(t, s, http.MethodPost, "/api/pixnet-publish", `{"title":"見出し","content":"本文"}`)

		if w.Code != http.StatusBadGateway {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadGateway)
		}
	})
}

// TestHandleFanoutPublish は一括配信ハンドラのテスト。
func TestHandleFanoutPublish(t *testing.T) {
	t.Parallel()

	t.Run("部分失敗があっても集約結果を200で返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")
		s.dispatcher.Register(&stubPublisher{name: "wordpress"})
		s.dispatcher.Register(&stubPublisher{name: "threads", fail: true})

		w := doRequest(t, s, http.MethodPost, "/api/publish",
			`{"title":"見出し","content":"本文","link":"https://example.com/news/1"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}

		var envelope struct {
			Total   int              `json:"total"`
			Success int              `json:"success"`
			Failed  int              `json:"failed"`
			Results []publish.Result `json:"results"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if envelope.Total != 2 || envelope.Success != 1 || envelope.Failed != 1 {
			t.Errorf("envelope = %+v", envelope)
		}

		// 成功と失敗の両方の活動イベントが記録されていること
		w = doRequest(t, s, http.MethodGet, "/api/events", "")
		var events []map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("イベント件数: got %d, want 2", len(events))
		}
	})

	t.Run("platformsで配信先を指定できること", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")
		s.dispatcher.Register(&stubPublisher{name: "wordpress"})
		s.dispatcher.Register(&stubPublisher{name: "pixnet"})

		w := doRequest(t, s, http.MethodPost, "/api/publish",
			`{"title":"見出し","content":"本文","platforms":["pixnet"]}`)

		var envelope struct {
			Total   int              `json:"total"`
			Results []publish.Result `json:"results"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if envelope.Total != 1 || envelope.Results[0].Platform != "pixnet" {
			t.Errorf("envelope = %+v", envelope)
		}
	})

	t.Run("配信先が未設定の場合は503を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")

		w := doRequest(t, s, http.MethodPost, "/api/publish", `{"title":"見出し","content":"本文"}`)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})
}

// TestHandleTokens はトークン状態と強制更新ハンドラのテスト。
func TestHandleTokens(t *testing.T) {
	t.Parallel()

	t.Run("台帳が空の場合は空配列を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")

		w := doRequest(t, s, http.MethodGet, "/api/tokens", "")

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		if body := strings.TrimSpace(w.Body.String()); body != "[]" {
			t.Errorf("body = %q, want []", body)
		}
	})

	t.Run("強制更新でトークンが交換されること", func(t *testing.T) {
		t.Parallel()

		refreshStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"renewed","token_type":"bearer","expires_in":5184000}`)
		}))
		t.Cleanup(refreshStub.Close)

		s := newTestServer(t, "http://localhost:19000")
		cfg := config.Default()
		cfg.Threads.GraphURL = refreshStub.URL
		cfg.Threads.SeedAccessToken = "seed"
		s.tokens = token.NewManager(s.queries, cfg, s.logger)

		w := doRequest(t, s, http.MethodPost, "/api/tokens/threads/refresh", "")

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}

		w = doRequest(t, s, http.MethodGet, "/api/tokens", "")
		var statuses []map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &statuses); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if len(statuses) != 1 || statuses[0]["platform"] != "threads" {
			t.Errorf("statuses = %v", statuses)
		}
	})

	t.Run("管理対象外のプラットフォームは400を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")

		w := doRequest(t, s, http.MethodPost, "/api/tokens/wordpress/refresh", "")

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestHandleListEvents は活動イベント一覧ハンドラのテスト。
func TestHandleListEvents(t *testing.T) {
	t.Parallel()

	t.Run("sinceが不正な形式の場合は400を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")

		w := doRequest(t, s, http.MethodGet, "/api/events?since=昨日", "")

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("イベントがない場合は空配列を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, "http://localhost:19000")

		w := doRequest(t, s, http.MethodGet, "/api/events", "")

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		if body := strings.TrimSpace(w.Body.String()); body != "[]" {
			t.Errorf("body = %q, want []", body)
		}
	})
}

// TestHandleHealth はヘルスチェックハンドラのテスト。
func TestHandleHealth(t *testing.T) {
	t.Parallel()

	t.Run("Supabaseが疎通できる場合は200を返すこと", func(t *testing.T) {
		t.Parallel()

		stub := newSupabaseStub(t, `[{"id":1}]`)
		s := newTestServer(t, stub.URL)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("Supabaseが疎通できない場合は503を返すこと", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)
		s := newTestServer(t, srv.URL)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})
}

// TestHandleMetrics はメトリクスエンドポイントのテスト。
func TestHandleMetrics(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, "http://localhost:19000")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "go_") {
		t.Error("Prometheusメトリクスが出力されていない")
	}
}
