package publish

import (
	"context"
	"net/url"
	"strconv"

	"github.com/nao1215/newshub/pkg/httpclient"
)

// Pixnet はPixnetブログAPIへ記事を投稿する。
type Pixnet struct {
	client *httpclient.Client
}

// NewPixnet は新しいPixnet配信クライアントを生成する。
func NewPixnet(baseURL, accessToken string) *Pixnet {
	return &Pixnet{
		client: httpclient.New(baseURL, httpclient.WithHeader("Authorization", "Bearer "+accessToken)),
	}
}

// Platform は配信先プラットフォーム名を返す。
func (p *Pixnet) Platform() string { return "pixnet" }

// Publish はブログ記事を投稿する。
func (p *Pixnet) Publish(ctx context.Context, post Post) (string, string, error) {
	values := url.Values{}
	values.Set("title", post.Title)
	values.Set("body", post.Content)

	var resp struct {
		Article struct {
			ID   int64  `json:"id"`
			Link string `json:"link"`
		} `json:"article"`
	}
	if err := p.client.PostForm(ctx, "/blog/articles", values, &resp); err != nil {
		return "", "", err
	}
	return strconv.FormatInt(resp.Article.ID, 10), resp.Article.Link, nil
}
