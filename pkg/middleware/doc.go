// Package middleware はGinルーターに適用する共通ミドルウェア（CORS、リカバリ、JWT認証）を提供する。
package middleware
