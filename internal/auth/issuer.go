package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/nao1215/campus/internal/auth/db"
	"github.com/nao1215/campus/pkg/audit"
	"github.com/nao1215/campus/pkg/password"
	"github.com/nao1215/campus/pkg/role"
	"github.com/nao1215/campus/pkg/token"
)

// Querier は認証サービスが利用するユーザーストアの操作を定義する。
// 本実装はsqlcが生成したクエリオブジェクト。
type Querier interface {
	CreateUser(ctx context.Context, arg db.CreateUserParams) error
	GetUserByUsername(ctx context.Context, username string) (db.User, error)
	ExistsUserByUsername(ctx context.Context, username string) (int64, error)
	InsertAuditEvent(ctx context.Context, arg db.InsertAuditEventParams) error
}

// Issuer は認証情報の検証とトークンの発行を担う。
// コラボレータ（ストア・ハッシュ関数・トークンコーデック）は
// コンストラクタで注入され、グローバルな状態を持たない。
type Issuer struct {
	// queries はユーザーストアへのクエリ実行オブジェクト。
	queries Querier
	// hasher はパスワードのハッシュ化と照合を行う。
	hasher password.Hasher
	// policy はパスワード強度のチェック関数。
	policy password.Policy
	// codec はトークンの署名を行う。
	codec *token.Codec
	// dummyHash は存在しないユーザーへのログイン試行でも同じ照合コストを
	// 支払うためのダミーハッシュ。応答時間からユーザー名の存在を
	// 推測されることを防ぐ。
	dummyHash string
}

// NewIssuer は新しいIssuerを生成する。
func NewIssuer(queries Querier, hasher password.Hasher, policy password.Policy, codec *token.Codec) (*Issuer, error) {
	dummyHash, err := hasher.Hash("campus-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("ダミーハッシュの生成に失敗: %w", err)
	}
	return &Issuer{
		queries:   queries,
		hasher:    hasher,
		policy:    policy,
		codec:     codec,
		dummyHash: dummyHash,
	}, nil
}

// LoginResult はログイン成功時の結果。
type LoginResult struct {
	// Token は署名付き認証トークン。
	Token string
	// Username はログインしたユーザー名。
	Username string
}

// Login は認証情報を検証し、署名付きトークンを発行する。
// ユーザー名の不存在とパスワード不一致はどちらもErrInvalidCredentialsを
// 返し、区別できない。トークンのロールは必ずストア上のレコードから
// 取り出される。
func (i *Issuer) Login(ctx context.Context, username, pass string) (LoginResult, error) {
	user, err := i.queries.GetUserByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		_ = i.hasher.Compare(i.dummyHash, pass)
		i.recordAudit(ctx, "", audit.ActionLoginFailed)
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}

	if err := i.hasher.Compare(user.PasswordHash, pass); err != nil {
		i.recordAudit(ctx, "", audit.ActionLoginFailed)
		return LoginResult{}, ErrInvalidCredentials
	}

	r, err := role.Parse(user.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("ストア上のロールが不正: %w", err)
	}

	signed, err := i.codec.Sign(user.Username, r)
	if err != nil {
		return LoginResult{}, fmt.Errorf("トークンの発行に失敗: %w", err)
	}

	i.recordAudit(ctx, user.Username, audit.ActionLoginSucceeded)
	return LoginResult{Token: signed, Username: user.Username}, nil
}

// Register は入力を検証し、新しいユーザーアカウントを永続化する。
// 検証順序: ユーザー名必須 → パスワード必須 → ロールが定義済み →
// ユーザー名未使用 → パスワード強度。パスワードはハッシュ化して保存し、
// 生のパスワードは保存もログ出力もしない。
func (i *Issuer) Register(ctx context.Context, username, pass, roleStr string) error {
	if strings.TrimSpace(username) == "" {
		return &ValidationError{Field: "username", Message: "ユーザー名は必須です"}
	}
	if pass == "" {
		return &ValidationError{Field: "password", Message: "パスワードは必須です"}
	}
	r, err := role.Parse(roleStr)
	if err != nil {
		return &ValidationError{Field: "role", Message: "ロールが不正です"}
	}

	exists, err := i.queries.ExistsUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("ユーザー名の重複確認に失敗: %w", err)
	}
	if exists != 0 {
		return ErrDuplicateUsername
	}

	if err := i.policy(pass); err != nil {
		return &ValidationError{Field: "password", Message: err.Error()}
	}

	hash, err := i.hasher.Hash(pass)
	if err != nil {
		return fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}

	if err := i.queries.CreateUser(ctx, db.CreateUserParams{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		Role:         r.String(),
	}); err != nil {
		// 重複確認とINSERTの間に同名の登録が割り込んだ場合は
		// UNIQUE制約違反になる。ストアの制約が最終的な裁定者
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("ユーザーの保存に失敗: %w", err)
	}

	i.recordAudit(ctx, username, audit.ActionUserRegistered)
	return nil
}

// recordAudit は監査証跡を記録する。記録に失敗しても認証処理は
// 継続し、エラーはログにのみ残す。
func (i *Issuer) recordAudit(ctx context.Context, username string, action audit.Action) {
	if err := i.queries.InsertAuditEvent(ctx, db.InsertAuditEventParams{
		Username: username,
		Action:   action.String(),
	}); err != nil {
		log.Printf("監査証跡の記録に失敗: %v", err)
	}
}

// isUniqueViolation はSQLiteのUNIQUE制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
