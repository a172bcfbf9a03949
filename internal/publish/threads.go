package publish

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nao1215/newshub/pkg/httpclient"
)

// threadsTextLimit はThreadsの投稿本文の最大文字数。
const threadsTextLimit = 500

// Threads はThreads APIへ記事を投稿する。
// メディアコンテナを作成してから公開する二段階の手順を踏む。
type Threads struct {
	client *httpclient.Client
	userID string
	tokens TokenSource
}

// NewThreads は新しいThreads配信クライアントを生成する。
func NewThreads(graphURL, apiVersion, userID string, tokens TokenSource) *Threads {
	return &Threads{
		client: httpclient.New(graphURL + "/" + apiVersion),
		userID: userID,
		tokens: tokens,
	}
}

// Platform は配信先プラットフォーム名を返す。
func (t *Threads) Platform() string { return "threads" }

// Publish は記事を投稿する。本文は文字数制限に合わせて切り詰める。
func (t *Threads) Publish(ctx context.Context, post Post) (string, string, error) {
	token, err := t.tokens.AccessToken(ctx, t.Platform())
	if err != nil {
		return "", "", err
	}

	// リンクは途中で切れると機能しないため、丸ごと入る場合だけ末尾に付ける
	text := truncateRunes(post.Title+"\n\n"+post.Content, threadsTextLimit)
	if post.Link != "" {
		withLink := text + "\n\n" + post.Link
		if len([]rune(withLink)) <= threadsTextLimit {
			text = withLink
		}
	}

	values := url.Values{}
	values.Set("access_token", token)
	values.Set("text", text)
	if post.ImageURL != "" {
		values.Set("media_type", "IMAGE")
		values.Set("image_url", post.ImageURL)
	} else {
		values.Set("media_type", "TEXT")
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := t.client.PostForm(ctx, "/"+t.userID+"/threads", values, &created); err != nil {
		return "", "", err
	}
	if created.ID == "" {
		return "", "", fmt.Errorf("メディアコンテナの作成応答にidが含まれていません")
	}

	publishValues := url.Values{}
	publishValues.Set("access_token", token)
	publishValues.Set("creation_id", created.ID)

	var published struct {
		ID string `json:"id"`
	}
	if err := t.client.PostForm(ctx, "/"+t.userID+"/threads_publish", publishValues, &published); err != nil {
		return "", "", err
	}
	return published.ID, "", nil
}
