package publish

import (
	"context"
	"encoding/base64"
	"strconv"

	"github.com/nao1215/newshub/pkg/httpclient"
)

// WordPress はWordPress REST APIへ記事を投稿する。
// 認証にはApplication Passwordを使用する。
type WordPress struct {
	client *httpclient.Client
}

// NewWordPress は新しいWordPress配信クライアントを生成する。
func NewWordPress(baseURL, username, appPassword string) *WordPress {
	auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + appPassword))
	return &WordPress{
		client: httpclient.New(baseURL, httpclient.WithHeader("Authorization", "Basic "+auth)),
	}
}

// Platform は配信先プラットフォーム名を返す。
func (w *WordPress) Platform() string { return "wordpress" }

// Publish は記事を公開状態で投稿する。
func (w *WordPress) Publish(ctx context.Context, post Post) (string, string, error) {
	req := map[string]string{
		"title":   post.Title,
		"content": post.Content,
		"status":  "publish",
	}

	var resp struct {
		ID   int64  `json:"id"`
		Link string `json:"link"`
	}
	if err := w.client.PostJSON(ctx, "/wp-json/wp/v2/posts", req, &resp); err != nil {
		return "", "", err
	}
	return strconv.FormatInt(resp.ID, 10), resp.Link, nil
}
