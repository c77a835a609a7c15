// Package password はパスワードのハッシュ化と照合を提供する。
//
// ハッシュ方式はbcrypt（ソルト付き）で、生のパスワードは一切保存しない。
// パスワード強度のチェックはPolicyとして差し替え可能にし、
// デフォルトでは制限しない。
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch はパスワードがハッシュと一致しないことを表す。
var ErrMismatch = errors.New("password: パスワードが一致しません")

// Hasher はパスワードのハッシュ化と照合のインターフェース。
type Hasher interface {
	// Hash はパスワードのハッシュ表現を返す。
	Hash(password string) (string, error)
	// Compare はパスワードがハッシュと一致するか照合する。
	// 一致しない場合はErrMismatchを返す。
	Compare(hash, password string) error
}

// BcryptHasher はbcryptによるHasherの実装。
type BcryptHasher struct {
	// cost はbcryptのコストパラメータ。
	cost int
}

// BcryptOption はBcryptHasherの設定を変更する。
type BcryptOption func(*BcryptHasher)

// WithCost はbcryptのコストパラメータを設定する。範囲外の値は無視する。
// テストではbcrypt.MinCostを指定して高速化できる。
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// NewBcryptHasher は新しいBcryptHasherを生成する。
func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash はパスワードをbcryptでハッシュ化する。
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: ハッシュ化に失敗: %w", err)
	}
	return string(hashed), nil
}

// Compare はパスワードがハッシュと一致するか照合する。
func (h *BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	if err != nil {
		return fmt.Errorf("password: 照合に失敗: %w", err)
	}
	return nil
}

// Policy はパスワード強度のチェック関数。登録時に適用される。
// 強度不足の場合はその理由を表すエラーを返す。
type Policy func(password string) error

// Permissive はすべてのパスワードを許可するPolicy。
// 強度チェックは意図的に未適用のままプラグインポイントとして残している。
// 強化する場合はIssuerに別のPolicyを注入する。
func Permissive(_ string) error {
	return nil
}
