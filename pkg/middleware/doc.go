// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// 署名付きトークンの検証、パニックリカバリ、CORS設定など、
// 認証サービスとgatewayで共通して使用するミドルウェアを含む。
package middleware
