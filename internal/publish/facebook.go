package publish

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nao1215/newshub/pkg/httpclient"
)

// Facebook はFacebook Graph APIでページへ記事を投稿する。
// 画像付きの場合は/photos、テキストのみの場合は/feedを使用する。
type Facebook struct {
	client *httpclient.Client
	pageID string
	tokens TokenSource
}

// NewFacebook は新しいFacebook配信クライアントを生成する。
func NewFacebook(graphURL, apiVersion, pageID string, tokens TokenSource) *Facebook {
	return &Facebook{
		client: httpclient.New(graphURL + "/" + apiVersion),
		pageID: pageID,
		tokens: tokens,
	}
}

// Platform は配信先プラットフォーム名を返す。
func (f *Facebook) Platform() string { return "facebook" }

// Publish はページへ記事を投稿する。
func (f *Facebook) Publish(ctx context.Context, post Post) (string, string, error) {
	token, err := f.tokens.AccessToken(ctx, f.Platform())
	if err != nil {
		return "", "", err
	}

	message := post.Title + "\n\n" + post.Content
	values := url.Values{}
	values.Set("access_token", token)

	var resp struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}

	if post.ImageURL != "" {
		values.Set("url", post.ImageURL)
		values.Set("caption", message)
		if err := f.client.PostForm(ctx, "/"+f.pageID+"/photos", values, &resp); err != nil {
			return "", "", err
		}
	} else {
		values.Set("message", message)
		if post.Link != "" {
			values.Set("link", post.Link)
		}
		if err := f.client.PostForm(ctx, "/"+f.pageID+"/feed", values, &resp); err != nil {
			return "", "", err
		}
	}

	// /photosは写真IDと投稿IDの両方を返す。投稿IDを優先する。
	postID := resp.PostID
	if postID == "" {
		postID = resp.ID
	}
	return postID, fmt.Sprintf("https://www.facebook.com/%s", postID), nil
}
