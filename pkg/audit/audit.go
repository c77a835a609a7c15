// Package audit は認証イベントの監査証跡で使用する種別を定義する。
//
// 認証サービスはログイン・登録の結果をこの種別とともに永続化する。
// 失敗の記録には試行があった事実だけを残し、どの入力項目が
// 誤っていたかは残さない。
package audit

// Action は監査証跡に記録する操作種別を表す。
type Action string

const (
	// ActionLoginSucceeded はログインに成功したことを表す。
	ActionLoginSucceeded Action = "LoginSucceeded"
	// ActionLoginFailed はログイン試行が失敗したことを表す。
	ActionLoginFailed Action = "LoginFailed"
	// ActionUserRegistered は新しいユーザーが登録されたことを表す。
	ActionUserRegistered Action = "UserRegistered"
)

// String は操作種別の文字列表現を返す。
func (a Action) String() string {
	return string(a)
}
