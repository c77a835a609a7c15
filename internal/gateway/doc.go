// Package gateway はAPI Gatewayサービスの内部実装を提供する。
//
// 外部からアクセス可能な唯一のサービスであり、セキュリティの境界線として
// 機能する。受信リクエストのトークンを検証し、検証済みの本人情報を
// X-User-Id / X-User-Roleヘッダーとして内部サービスに転送する。
// この境界を越えた本人情報ヘッダーはgateway自身が計算した値だけであり、
// クライアント入力が素通りすることはない。
package gateway
