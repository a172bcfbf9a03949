package token

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nao1215/newshub/pkg/httpclient"
)

// Refresher は長期アクセストークンを新しいトークンに交換する。
// プラットフォームごとに交換エンドポイントとgrant_typeが異なる。
type Refresher interface {
	// Refresh は現在のトークンを新しい長期トークンに交換する。
	// 新しいトークンと有効秒数を返す。
	Refresh(ctx context.Context, accessToken string) (newToken string, expiresIn int64, err error)
}

// refreshResponse はトークン交換APIの共通レスポンス。
type refreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ThreadsRefresher はThreads APIの長期トークンを更新する。
type ThreadsRefresher struct {
	client *httpclient.Client
}

// NewThreadsRefresher は新しいThreadsRefresherを生成する。
// baseURLにはThreads APIのベースURL（例: "https://graph.threads.net"）を指定する。
func NewThreadsRefresher(baseURL string) *ThreadsRefresher {
	return &ThreadsRefresher{client: httpclient.New(baseURL)}
}

// Refresh は長期トークンを更新する。
func (r *ThreadsRefresher) Refresh(ctx context.Context, accessToken string) (string, int64, error) {
	path := "/refresh_access_token?grant_type=th_refresh_token&access_token=" + url.QueryEscape(accessToken)

	var resp refreshResponse
	if err := r.client.GetJSON(ctx, path, &resp); err != nil {
		return "", 0, err
	}
	if resp.AccessToken == "" {
		return "", 0, fmt.Errorf("トークン交換の応答にaccess_tokenが含まれていません")
	}
	return resp.AccessToken, resp.ExpiresIn, nil
}

// InstagramRefresher はInstagramの長期トークンを更新する。
type InstagramRefresher struct {
	client *httpclient.Client
}

// NewInstagramRefresher は新しいInstagramRefresherを生成する。
func NewInstagramRefresher(baseURL string) *InstagramRefresher {
	return &InstagramRefresher{client: httpclient.New(baseURL)}
}

// Refresh は長期トークンを更新する。
func (r *InstagramRefresher) Refresh(ctx context.Context, accessToken string) (string, int64, error) {
	path := "/refresh_access_token?grant_type=ig_refresh_token&access_token=" + url.QueryEscape(accessToken)

	var resp refreshResponse
	if err := r.client.GetJSON(ctx, path, &resp); err != nil {
		return "", 0, err
	}
	if resp.AccessToken == "" {
		return "", 0, fmt.Errorf("トークン交換の応答にaccess_tokenが含まれていません")
	}
	return resp.AccessToken, resp.ExpiresIn, nil
}

// FacebookRefresher はFacebookの長期トークンをfb_exchange_tokenで再交換する。
// 交換にはアプリIDとアプリシークレットが必要となる。
type FacebookRefresher struct {
	client     *httpclient.Client
	apiVersion string
	appID      string
	appSecret  string
}

// NewFacebookRefresher は新しいFacebookRefresherを生成する。
func NewFacebookRefresher(baseURL, apiVersion, appID, appSecret string) *FacebookRefresher {
	return &FacebookRefresher{
		client:     httpclient.New(baseURL),
		apiVersion: apiVersion,
		appID:      appID,
		appSecret:  appSecret,
	}
}

// Refresh は長期トークンを更新する。
func (r *FacebookRefresher) Refresh(ctx context.Context, accessToken string) (string, int64, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", r.appID)
	params.Set("client_secret", r.appSecret)
	params.Set("fb_exchange_token", accessToken)
	path := fmt.Sprintf("/%s/oauth/access_token?%s", r.apiVersion, params.Encode())

	var resp refreshResponse
	if err := r.client.GetJSON(ctx, path, &resp); err != nil {
		return "", 0, err
	}
	if resp.AccessToken == "" {
		return "", 0, fmt.Errorf("トークン交換の応答にaccess_tokenが含まれていません")
	}
	return resp.AccessToken, resp.ExpiresIn, nil
}
