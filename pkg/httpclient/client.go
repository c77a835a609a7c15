package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nao1215/campus/pkg/role"
)

// 下流サービスに本人情報を伝えるHTTPヘッダーキー。
const (
	// HeaderUserID は検証済みユーザーIDを運ぶヘッダー。
	HeaderUserID = "X-User-Id"
	// HeaderUserRole は検証済みロールを運ぶヘッダー。
	HeaderUserRole = "X-User-Role"
)

// Identity は検証済みトークンから導出した本人情報。
// gatewayが自ら計算した値であり、クライアント入力ではない。
type Identity struct {
	// UserID は認証済みユーザーの識別子（ユーザー名）。
	UserID string
	// Role は認証済みユーザーのロール。
	Role role.Role
}

// Client は内部サービスへの転送用HTTPクライアント。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先サービスのベースURL。
	baseURL string
}

// New は新しい転送用HTTPクライアントを生成する。
// baseURLには接続先サービスのベースURL（例: "http://auth:8081"）を指定する。
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

// Result は転送先サービスからのレスポンス。
type Result struct {
	// StatusCode は転送先が返したHTTPステータスコード。
	StatusCode int
	// ContentType はレスポンスのContent-Type。
	ContentType string
	// Body はレスポンスボディ。
	Body []byte
}

// Forward は受信リクエストを内部サービスへ転送し、レスポンスを返す。
//
// 転送するリクエストは新規に組み立てる。元のリクエストから引き継ぐのは
// ボディとContent-Type、Accept、Authorizationだけで、それ以外のヘッダーは
// 破棄する。identityが指定された場合、本人情報ヘッダーは必ずidentityの
// 値で設定する。クライアントが同名ヘッダーを送っていても上書きされ、
// マージされることはない。
func (c *Client) Forward(ctx context.Context, method, path string, src *http.Request, identity *Identity) (*Result, error) {
	url := c.baseURL + path
	if src.URL.RawQuery != "" {
		url += "?" + src.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, url, src.Body)
	if err != nil {
		return nil, fmt.Errorf("転送リクエストの作成に失敗: %w", err)
	}

	if v := src.Header.Get("Content-Type"); v != "" {
		req.Header.Set("Content-Type", v)
	}
	if v := src.Header.Get("Accept"); v != "" {
		req.Header.Set("Accept", v)
	}
	if v := src.Header.Get("Authorization"); v != "" {
		req.Header.Set("Authorization", v)
	}
	if identity != nil {
		req.Header.Set(HeaderUserID, identity.UserID)
		req.Header.Set(HeaderUserRole, identity.Role.String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("内部サービスへの転送に失敗: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	return &Result{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}
