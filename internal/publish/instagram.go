package publish

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nao1215/newshub/pkg/httpclient"
)

// instagramCaptionLimit はInstagramのキャプションの最大文字数。
const instagramCaptionLimit = 2200

// Instagram はInstagram Graph APIへ記事を投稿する。
// Threadsと同様にメディアコンテナを作成してから公開する。画像は必須。
type Instagram struct {
	client *httpclient.Client
	userID string
	tokens TokenSource
}

// NewInstagram は新しいInstagram配信クライアントを生成する。
func NewInstagram(graphURL, apiVersion, userID string, tokens TokenSource) *Instagram {
	return &Instagram{
		client: httpclient.New(graphURL + "/" + apiVersion),
		userID: userID,
		tokens: tokens,
	}
}

// Platform は配信先プラットフォーム名を返す。
func (i *Instagram) Platform() string { return "instagram" }

// Publish は画像付きの記事を投稿する。画像がない場合はエラーを返す。
func (i *Instagram) Publish(ctx context.Context, post Post) (string, string, error) {
	if post.ImageURL == "" {
		return "", "", fmt.Errorf("Instagramへの配信には画像が必要です")
	}

	token, err := i.tokens.AccessToken(ctx, i.Platform())
	if err != nil {
		return "", "", err
	}

	caption := truncateRunes(post.Title+"\n\n"+post.Content, instagramCaptionLimit)

	values := url.Values{}
	values.Set("access_token", token)
	values.Set("image_url", post.ImageURL)
	values.Set("caption", caption)

	var created struct {
		ID string `json:"id"`
	}
	if err := i.client.PostForm(ctx, "/"+i.userID+"/media", values, &created); err != nil {
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
	if err := i.client.PostForm(ctx, "/"+i.userID+"/media_publish", publishValues, &published); err != nil {
		return "", "", err
	}
	return published.ID, "", nil
}
