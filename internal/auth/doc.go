// Package auth は認証サービスの内部実装を提供する。
//
// 認証情報の検証、ユーザー登録、署名付きトークンの発行を担当する。
// トークンのロールは必ずストア上のユーザーレコードから取り出され、
// クライアント入力がロールとしてトークンに載ることはない。
package auth
