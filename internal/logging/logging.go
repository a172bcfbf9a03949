// Package logging はアプリケーション全体で使用する構造化ロガーを提供する。
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New は指定されたレベルのzerologロガーを生成する。
// レベルの解析に失敗した場合はinfoレベルにフォールバックする。
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(lvl)
}
