// Package token は外部プラットフォームの長期アクセストークンのライフサイクルを管理する。
// トークンはSQLiteの台帳に記録され、発行から一定日数（既定59日）を超えると
// 取得時に自動で新しい長期トークンに交換される。
package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nao1215/newshub/internal/config"
	"github.com/nao1215/newshub/internal/metrics"
	"github.com/nao1215/newshub/internal/store"
	"github.com/nao1215/newshub/pkg/event"
)

// トークン台帳が管理するプラットフォーム名。
const (
	// PlatformFacebook はFacebookページ投稿用のトークン。
	PlatformFacebook = "facebook"
	// PlatformThreads はThreads投稿用のトークン。
	PlatformThreads = "threads"
	// PlatformInstagram はInstagram投稿用のトークン。
	PlatformInstagram = "instagram"
)

// Manager は長期アクセストークンの台帳を管理する。
// 初回利用時に環境変数のトークンを台帳へ登録し、以降は台帳のトークンを返す。
// 有効期限切れのトークンは更新せず、再認可を求めるエラーを返す。
type Manager struct {
	queries      *store.Queries
	refreshers   map[string]Refresher
	seeds        map[string]string
	refreshAfter time.Duration
	lifetime     time.Duration
	logger       zerolog.Logger
	// now はテストで日時を固定するために差し替え可能にしている。
	now func() time.Time

	mu sync.Mutex
}

// NewManager は新しいトークン管理オブジェクトを生成する。
func NewManager(queries *store.Queries, cfg *config.Config, logger zerolog.Logger) *Manager {
	refreshers := map[string]Refresher{
		PlatformThreads:   NewThreadsRefresher(cfg.Threads.GraphURL),
		PlatformInstagram: NewInstagramRefresher(cfg.Instagram.GraphURL),
	}
	// Facebookの再交換にはアプリの資格情報が必要となる
	if cfg.Facebook.AppID != "" && cfg.Facebook.AppSecret != "" {
		refreshers[PlatformFacebook] = NewFacebookRefresher(
			cfg.Facebook.GraphURL, cfg.Facebook.APIVersion, cfg.Facebook.AppID, cfg.Facebook.AppSecret)
	}

	seeds := make(map[string]string)
	if cfg.Facebook.SeedAccessToken != "" {
		seeds[PlatformFacebook] = cfg.Facebook.SeedAccessToken
	}
	if cfg.Threads.SeedAccessToken != "" {
		seeds[PlatformThreads] = cfg.Threads.SeedAccessToken
	}
	if cfg.Instagram.SeedAccessToken != "" {
		seeds[PlatformInstagram] = cfg.Instagram.SeedAccessToken
	}

	return &Manager{
		queries:      queries,
		refreshers:   refreshers,
		seeds:        seeds,
		refreshAfter: time.Duration(cfg.Token.RefreshAfterDays) * 24 * time.Hour,
		lifetime:     time.Duration(cfg.Token.LifetimeDays) * 24 * time.Hour,
		logger:       logger,
		now:          time.Now,
	}
}

// AccessToken は指定されたプラットフォームの有効なアクセストークンを返す。
// 発行から更新猶予日数を超えている場合は新しいトークンに交換して台帳を更新する。
func (m *Manager) AccessToken(ctx context.Context, platform string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tok, err := m.currentToken(ctx, platform)
	if err != nil {
		return "", err
	}

	now := m.now()
	if !now.Before(tok.ExpiresAt()) {
		return "", fmt.Errorf("%sのトークンは有効期限切れです。再認可してトークンを設定し直してください", platform)
	}
	if now.Sub(tok.IssuedAt) < m.refreshAfter {
		return tok.AccessToken, nil
	}

	refreshed, err := m.refresh(ctx, platform, tok)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// Refresh は更新猶予日数に関係なくトークンを即座に交換する。
func (m *Manager) Refresh(ctx context.Context, platform string) (store.PlatformToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tok, err := m.currentToken(ctx, platform)
	if err != nil {
		return store.PlatformToken{}, err
	}
	return m.refresh(ctx, platform, tok)
}

// Status はトークンの状態情報。アクセストークンそのものは含めない。
type Status struct {
	// Platform はプラットフォーム名。
	Platform string `json:"platform"`
	// IssuedAt はトークンの発行日時。
	IssuedAt time.Time `json:"issued_at"`
	// RefreshedAt は最後に更新した日時。一度も更新していない場合は省略される。
	RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
	// ExpiresAt はトークンの有効期限。
	ExpiresAt time.Time `json:"expires_at"`
	// DaysRemaining は有効期限までの残り日数。
	DaysRemaining int `json:"days_remaining"`
	// NeedsRefresh は更新猶予日数を超えているかどうか。
	NeedsRefresh bool `json:"needs_refresh"`
}

// Status は台帳に登録されているすべてのトークンの状態を返す。
func (m *Manager) Status(ctx context.Context) ([]Status, error) {
	tokens, err := m.queries.ListPlatformTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("トークン台帳の取得に失敗: %w", err)
	}

	now := m.now()
	statuses := make([]Status, 0, len(tokens))
	for _, t := range tokens {
		expiresAt := t.ExpiresAt()
		s := Status{
			Platform:      t.Platform,
			IssuedAt:      t.IssuedAt,
			ExpiresAt:     expiresAt,
			DaysRemaining: int(expiresAt.Sub(now).Hours() / 24),
			NeedsRefresh:  now.Sub(t.IssuedAt) >= m.refreshAfter,
		}
		if t.RefreshedAt.Valid {
			refreshedAt := t.RefreshedAt.Time
			s.RefreshedAt = &refreshedAt
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// currentToken は台帳のトークンを取得する。台帳に存在しない場合は
// 環境変数のトークンを発行日時を現在として登録する。
func (m *Manager) currentToken(ctx context.Context, platform string) (store.PlatformToken, error) {
	tok, err := m.queries.GetPlatformToken(ctx, platform)
	if err == nil {
		return tok, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return store.PlatformToken{}, fmt.Errorf("トークン台帳の取得に失敗: %w", err)
	}

	seed, ok := m.seeds[platform]
	if !ok || seed == "" {
		return store.PlatformToken{}, fmt.Errorf("%sのアクセストークンが設定されていません", platform)
	}

	issuedAt := m.now().UTC()
	expiresIn := int64(m.lifetime / time.Second)
	if err := m.queries.UpsertPlatformToken(ctx, store.UpsertPlatformTokenParams{
		Platform:    platform,
		AccessToken: seed,
		IssuedAt:    issuedAt,
		ExpiresIn:   expiresIn,
	}); err != nil {
		return store.PlatformToken{}, fmt.Errorf("トークン台帳への登録に失敗: %w", err)
	}
	m.logger.Info().Str("platform", platform).Msg("環境変数のトークンを台帳に登録した")

	return store.PlatformToken{
		Platform:    platform,
		AccessToken: seed,
		IssuedAt:    issuedAt,
		ExpiresIn:   expiresIn,
	}, nil
}

// refresh はトークンを交換して台帳を更新する。
// 交換に失敗した場合は台帳を変更せずエラーを返す。呼び出し元がロックを保持していること。
func (m *Manager) refresh(ctx context.Context, platform string, tok store.PlatformToken) (store.PlatformToken, error) {
	r, ok := m.refreshers[platform]
	if !ok {
		m.logger.Warn().Str("platform", platform).Msg("トークンの更新手段がないため既存のトークンを継続使用する")
		return tok, nil
	}

	newToken, expiresIn, err := r.Refresh(ctx, tok.AccessToken)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues(platform, metrics.ResultLabel(false)).Inc()
		return store.PlatformToken{}, fmt.Errorf("%sのトークン更新に失敗: %w", platform, err)
	}
	if expiresIn <= 0 {
		expiresIn = int64(m.lifetime / time.Second)
	}

	issuedAt := m.now().UTC()
	if err := m.queries.UpsertPlatformToken(ctx, store.UpsertPlatformTokenParams{
		Platform:    platform,
		AccessToken: newToken,
		IssuedAt:    issuedAt,
		ExpiresIn:   expiresIn,
	}); err != nil {
		return store.PlatformToken{}, fmt.Errorf("トークン台帳の更新に失敗: %w", err)
	}
	metrics.TokenRefreshTotal.WithLabelValues(platform, metrics.ResultLabel(true)).Inc()

	refreshed := store.PlatformToken{
		Platform:    platform,
		AccessToken: newToken,
		IssuedAt:    issuedAt,
		ExpiresIn:   expiresIn,
	}
	m.recordRefreshed(ctx, refreshed)
	m.logger.Info().
		Str("platform", platform).
		Time("expires_at", refreshed.ExpiresAt()).
		Msg("長期トークンを更新した")
	return refreshed, nil
}

// recordRefreshed はトークン更新の活動イベントを記録する。
// 記録の失敗はトークン更新自体の失敗にはしない。
func (m *Manager) recordRefreshed(ctx context.Context, tok store.PlatformToken) {
	e, err := event.New(tok.Platform, event.AggregateTypeToken, event.TypeTokenRefreshed,
		event.TokenRefreshedData{Platform: tok.Platform, ExpiresAt: tok.ExpiresAt()})
	if err != nil {
		m.logger.Warn().Err(err).Msg("トークン更新イベントの生成に失敗した")
		return
	}
	if err := m.queries.AppendEvent(ctx, store.AppendEventParams{
		ID:            e.ID,
		AggregateID:   e.AggregateID,
		AggregateType: string(e.AggregateType),
		EventType:     string(e.EventType),
		Data:          string(e.Data),
		CreatedAt:     e.CreatedAt,
	}); err != nil {
		m.logger.Warn().Err(err).Msg("トークン更新イベントの記録に失敗した")
	}
}
