package auth

import "errors"

// ErrInvalidCredentials は認証情報が正しくないことを表す。
// ユーザー名の不存在とパスワード不一致はどちらもこのエラーになり、
// 呼び出し側からは区別できない。
var ErrInvalidCredentials = errors.New("auth: 認証情報が無効です")

// ErrDuplicateUsername はユーザー名が既に使用されていることを表す。
var ErrDuplicateUsername = errors.New("auth: このユーザー名は既に使用されています")

// ValidationError は登録リクエストの入力検証エラーを表す。
// どの項目の検証に失敗したかをクライアントに伝える。
type ValidationError struct {
	// Field は検証に失敗した項目名。
	Field string
	// Message はクライアントに返すメッセージ。
	Message string
}

// Error はエラーメッセージを返す。
func (e *ValidationError) Error() string {
	return e.Message
}
