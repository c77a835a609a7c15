// Package token は署名付き認証トークンのエンコード・デコードを提供する。
//
// トークンはHS256で署名されたコンパクト形式（ヘッダー・クレーム・署名の
// ドット区切り3セグメント）で、ユーザー名とロールと有効期限を運ぶ。
// 検証は構造チェック、署名チェック、有効期限チェックの順で行われ、
// 失敗理由は種別ごとのセンチネルエラーで区別できる。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nao1215/campus/pkg/role"
)

// 検証失敗の種別。呼び出し側はerrors.Isで判別できる。
// クライアントへの応答では種別を区別せず、内部ログでのみ使い分けること。
var (
	// ErrMalformed はトークンが構造的にパースできないことを表す。
	ErrMalformed = errors.New("token: トークンの形式が不正です")
	// ErrInvalid は署名が一致しない等、トークンが無効であることを表す。
	ErrInvalid = errors.New("token: トークンが無効です")
	// ErrExpired は署名は正しいが有効期限が切れていることを表す。
	ErrExpired = errors.New("token: トークンの有効期限が切れています")
)

// issuerName はトークンのiss（発行者）クレームに設定する値。
const issuerName = "campus-auth"

// DefaultTTL はトークンのデフォルト有効期間。
const DefaultTTL = 24 * time.Hour

// Claims は認証トークンに埋め込む本人情報。
// Verifyに成功した場合にのみ生成されるため、Claims値を持っていること
// 自体が検証済みであることの証明になる。
type Claims struct {
	jwt.RegisteredClaims
	// Role はユーザーのロール。
	Role role.Role `json:"role"`
}

// Username はトークンの主体（ユーザー名）を返す。
func (c *Claims) Username() string {
	return c.Subject
}

// UserRole はトークンに埋め込まれたロールを返す。
func (c *Claims) UserRole() role.Role {
	return c.Role
}

// Codec は認証トークンの署名と検証を行う。
// 秘密鍵はプロセス起動時に一度だけ読み込まれ、以後変更されない。
// メソッドは(トークン, 現在時刻, 秘密鍵)の純粋関数であり、
// ロックなしで並行呼び出しできる。
type Codec struct {
	// secret はHS256署名用の秘密鍵。
	secret []byte
	// ttl は発行するトークンの有効期間。
	ttl time.Duration
	// now は現在時刻を返す関数。テストで差し替える。
	now func() time.Time
}

// Option はCodecの設定を変更する。
type Option func(*Codec)

// WithTTL は発行するトークンの有効期間を設定する。
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		c.ttl = ttl
	}
}

// WithClock は現在時刻を返す関数を差し替える。テスト用。
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec は新しいCodecを生成する。秘密鍵が空の場合はエラーを返す。
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: 秘密鍵が空です")
	}
	c := &Codec{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Sign はユーザー名とロールから署名付きトークンを生成する。
// 発行時刻は現在時刻、有効期限は現在時刻+TTLが設定される。
func (c *Codec) Sign(subject string, r role.Role) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Role: r,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: 署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はトークン文字列を検証し、クレームを返す。
// 構造が不正な場合はErrMalformed、署名が一致しない場合はErrInvalid、
// 署名は正しいが期限切れの場合はErrExpiredにマップされる。
// 署名検証は有効期限チェックより先に行われるため、署名が不正な
// トークンのクレーム内容が副作用として外に漏れることはない。
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(_ *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		default:
			// 署名不一致を含め、その他の失敗はすべて無効扱いにする
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	// 署名は正しくてもロールが定義外なら受け入れない
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: 未定義のロール %q", ErrInvalid, claims.Role)
	}
	return claims, nil
}
