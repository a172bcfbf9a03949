// Package metrics はニュース配信パイプラインのPrometheusメトリクスを定義する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RewriteTotal はAIリライトの実行回数（結果別）。
	RewriteTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "newshub_rewrite_total", Help: "AI rewrite attempts by result"},
		[]string{"result"},
	)
	// PublishTotal は外部プラットフォームへの配信回数（プラットフォーム・結果別）。
	PublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "newshub_publish_total", Help: "Publish attempts by platform and result"},
		[]string{"platform", "result"},
	)
	// TokenRefreshTotal は長期トークンの更新回数（プラットフォーム・結果別）。
	TokenRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "newshub_token_refresh_total", Help: "Long-lived token refreshes by platform and result"},
		[]string{"platform", "result"},
	)
)

func init() {
	prometheus.MustRegister(RewriteTotal, PublishTotal, TokenRefreshTotal)
}

// ResultLabel はsuccess/failureのメトリクスラベルを返す。
func ResultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// Handler は/metricsエンドポイント用のHTTPハンドラを返す。
func Handler() http.Handler {
	return promhttp.Handler()
}
