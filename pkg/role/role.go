// Package role はユーザーのロール（役割）を閉じた列挙型として定義する。
//
// ロールは登録時に一度だけ検証され、以降はトークンのクレームと
// 下流サービスへのヘッダーでそのまま伝播される。自由入力の文字列が
// ロールとして流通することはない。
package role

import "fmt"

// Role はユーザーの役割を表す。定義済みの定数以外の値は不正。
type Role string

const (
	// Student は学生ロール。
	Student Role = "STUDENT"
	// Instructor は講師ロール。
	Instructor Role = "INSTRUCTOR"
	// Faculty は教員ロール。
	Faculty Role = "FACULTY"
)

// All は定義済みの全ロールを返す。
func All() []Role {
	return []Role{Student, Instructor, Faculty}
}

// Valid はロールが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case Student, Instructor, Faculty:
		return true
	}
	return false
}

// String はロールの文字列表現を返す。
func (r Role) String() string {
	return string(r)
}

// Parse は文字列をRoleに変換する。定義外の値はエラーを返す。
// 登録リクエストのロール検証はこの関数に一本化する。
func Parse(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("未定義のロール: %q", s)
	}
	return r, nil
}
