package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestCORS はCORSミドルウェアを検証する。
func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("許可されたオリジンからのリクエストにCORSヘッダーが設定されること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(CORS([]string{"http://localhost:3000", "https://example.com"}))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
		}
		if got := w.Header().Get("Access-Control-Expose-Headers"); got != "Authorization, X-User-Id, X-User-Role" {
			t.Errorf("Access-Control-Expose-Headers = %q, want %q", got, "Authorization, X-User-Id, X-User-Role")
		}
	})

	t.Run("許可されていないオリジンからのリクエストにCORSヘッダーが設定されないこと", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(CORS([]string{"http://localhost:3000"}))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://evil.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want 空", got)
		}
	})

	t.Run("OPTIONSリクエストが204で終了すること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(CORS([]string{"http://localhost:3000"}))
		router.POST("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusNoContent)
		}
	})
}
