// Package httpclient はgatewayから内部サービスへのリクエスト転送を提供する。
//
// 転送時に付与する本人情報ヘッダー（X-User-Id / X-User-Role）は、
// 検証済みトークンから導出したIdentityのみを情報源とする。
// クライアントが送ってきた同名ヘッダーが下流に到達することはない。
package httpclient
