package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nao1215/campus/pkg/role"
)

// recordedRequest は転送先が受信したリクエストの記録。
type recordedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

// newRecordingServer は受信リクエストを記録するテスト用サーバーを生成するヘルパー関数。
func newRecordingServer(t *testing.T, status int, respBody string) (*httptest.Server, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.header = r.Header.Clone()
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		rec.body = buf.Bytes()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, respBody)
	}))
	t.Cleanup(server.Close)
	return server, rec
}

// TestForward はForwardメソッドを検証する。
func TestForward(t *testing.T) {
	t.Parallel()

	t.Run("メソッドとパスとボディが転送されること", func(t *testing.T) {
		t.Parallel()

		server, rec := newRecordingServer(t, http.StatusCreated, `{"message":"created"}`)
		client := New(server.URL)

		src := httptest.NewRequest(http.MethodPost, "/original?limit=10", bytes.NewReader([]byte(`{"name":"algebra"}`)))
		src.Header.Set("Content-Type", "application/json")

		result, err := client.Forward(context.Background(), http.MethodPost, "/api/v1/courses", src, nil)
		if err != nil {
			t.Fatalf("Forward()でエラーが発生: %v", err)
		}

		if result.StatusCode != http.StatusCreated {
			t.Errorf("StatusCode = %d, want %d", result.StatusCode, http.StatusCreated)
		}
		if string(result.Body) != `{"message":"created"}` {
			t.Errorf("Body = %q, want %q", result.Body, `{"message":"created"}`)
		}
		if rec.method != http.MethodPost {
			t.Errorf("転送先のメソッド = %q, want %q", rec.method, http.MethodPost)
		}
		if rec.path != "/api/v1/courses" {
			t.Errorf("転送先のパス = %q, want %q", rec.path, "/api/v1/courses")
		}
		if rec.query != "limit=10" {
			t.Errorf("転送先のクエリ = %q, want %q", rec.query, "limit=10")
		}
		if string(rec.body) != `{"name":"algebra"}` {
			t.Errorf("転送先のボディ = %q, want %q", rec.body, `{"name":"algebra"}`)
		}
	})

	t.Run("本人情報ヘッダーがIdentityの値で設定されること", func(t *testing.T) {
		t.Parallel()

		server, rec := newRecordingServer(t, http.StatusOK, `{}`)
		client := New(server.URL)

		src := httptest.NewRequest(http.MethodGet, "/original", nil)
		identity := &Identity{UserID: "alice", Role: role.Student}

		if _, err := client.Forward(context.Background(), http.MethodGet, "/api/v1/courses", src, identity); err != nil {
			t.Fatalf("Forward()でエラーが発生: %v", err)
		}

		if got := rec.header.Get(HeaderUserID); got != "alice" {
			t.Errorf("X-User-Id = %q, want %q", got, "alice")
		}
		if got := rec.header.Get(HeaderUserRole); got != "STUDENT" {
			t.Errorf("X-User-Role = %q, want %q", got, "STUDENT")
		}
	})

	t.Run("クライアント供給の本人情報ヘッダーが上書きされること", func(t *testing.T) {
		t.Parallel()

		server, rec := newRecordingServer(t, http.StatusOK, `{}`)
		client := New(server.URL)

		// クライアントがFACULTYを詐称しても、検証済みのSTUDENTで上書きされる
		src := httptest.NewRequest(http.MethodGet, "/original", nil)
		src.Header.Set(HeaderUserID, "mallory")
		src.Header.Set(HeaderUserRole, "FACULTY")
		identity := &Identity{UserID: "alice", Role: role.Student}

		if _, err := client.Forward(context.Background(), http.MethodGet, "/api/v1/courses", src, identity); err != nil {
			t.Fatalf("Forward()でエラーが発生: %v", err)
		}

		if got := rec.header.Get(HeaderUserID); got != "alice" {
			t.Errorf("X-User-Id = %q, want %q", got, "alice")
		}
		if got := rec.header.Get(HeaderUserRole); got != "STUDENT" {
			t.Errorf("X-User-Role = %q, want %q", got, "STUDENT")
		}
		if values := rec.header.Values(HeaderUserRole); len(values) != 1 {
			t.Errorf("X-User-Roleの値が%d個ある（マージされている）: %v", len(values), values)
		}
	})

	t.Run("本人情報以外の任意ヘッダーは転送されないこと", func(t *testing.T) {
		t.Parallel()

		server, rec := newRecordingServer(t, http.StatusOK, `{}`)
		client := New(server.URL)

		src := httptest.NewRequest(http.MethodGet, "/original", nil)
		src.Header.Set("X-Custom-Header", "value")
		src.Header.Set("Cookie", "session=abc")
		src.Header.Set("Authorization", "Bearer token-value")

		if _, err := client.Forward(context.Background(), http.MethodGet, "/api/v1/courses", src, nil); err != nil {
			t.Fatalf("Forward()でエラーが発生: %v", err)
		}

		if got := rec.header.Get("X-Custom-Header"); got != "" {
			t.Errorf("X-Custom-Headerが転送された: %q", got)
		}
		if got := rec.header.Get("Cookie"); got != "" {
			t.Errorf("Cookieが転送された: %q", got)
		}
		if got := rec.header.Get("Authorization"); got != "Bearer token-value" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer token-value")
		}
	})

	t.Run("Identityが無い場合は本人情報ヘッダーが設定されないこと", func(t *testing.T) {
		t.Parallel()

		server, rec := newRecordingServer(t, http.StatusOK, `{}`)
		client := New(server.URL)

		src := httptest.NewRequest(http.MethodGet, "/original", nil)
		src.Header.Set(HeaderUserID, "mallory")

		if _, err := client.Forward(context.Background(), http.MethodGet, "/auth/login", src, nil); err != nil {
			t.Fatalf("Forward()でエラーが発生: %v", err)
		}

		if got := rec.header.Get(HeaderUserID); got != "" {
			t.Errorf("X-User-Idが転送された: %q", got)
		}
	})

	t.Run("接続できない場合エラーになること", func(t *testing.T) {
		t.Parallel()

		client := New("http://127.0.0.1:1")
		src := httptest.NewRequest(http.MethodGet, "/original", nil)

		if _, err := client.Forward(context.Background(), http.MethodGet, "/api/v1/courses", src, nil); err == nil {
			t.Fatal("接続できない場合Forward()がエラーを返すべき")
		}
	})
}
