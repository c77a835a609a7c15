package gateway

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/campus/pkg/httpclient"
	"github.com/nao1215/campus/pkg/middleware"
	"github.com/nao1215/campus/pkg/token"
)

// Server はAPI GatewayサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// codec はトークンの検証を行う。認証サービスと同じ秘密鍵を共有する。
	codec *token.Codec
	// clients は内部サービスへの転送用クライアント。
	clients backendClients
}

// backendClients は内部サービスへの転送用クライアントの束。
type backendClients struct {
	// Auth は認証サービスへのクライアント。
	Auth *httpclient.Client
	// Course は講義サービスへのクライアント。
	Course *httpclient.Client
	// Enrollment は履修サービスへのクライアント。
	Enrollment *httpclient.Client
}

// NewServer は新しいGatewayサーバーを生成する。
// トークン検証用の秘密鍵は環境変数から一度だけ読み込む。
func NewServer(port string) (*Server, error) {
	codec, err := token.NewCodec(getEnvOr("JWT_SECRET", "dev-secret-key"))
	if err != nil {
		return nil, fmt.Errorf("トークンコーデックの初期化に失敗: %w", err)
	}

	clients := backendClients{
		Auth:       httpclient.New(getEnvOr("AUTH_URL", "http://localhost:8081")),
		Course:     httpclient.New(getEnvOr("COURSE_URL", "http://localhost:8082")),
		Enrollment: httpclient.New(getEnvOr("ENROLLMENT_URL", "http://localhost:8083")),
	}

	frontendURL := getEnvOr("FRONTEND_URL", "http://localhost:3000")

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{frontendURL}))

	s := &Server{
		router:  router,
		port:    port,
		codec:   codec,
		clients: clients,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 認証エンドポイント（トークン不要）
	auth := s.router.Group("/auth")
	{
		auth.POST("/login", s.handlePublicProxy(s.clients.Auth, "/auth/login"))
		auth.POST("/register", s.handlePublicProxy(s.clients.Auth, "/auth/register"))
	}

	// 認証必須のAPIエンドポイント
	api := s.router.Group("/api/v1")
	api.Use(middleware.TokenAuth(s.codec))
	{
		// 講義
		api.GET("/courses", s.handleProxy(s.clients.Course, "/api/v1/courses"))
		api.POST("/courses", s.handleProxy(s.clients.Course, "/api/v1/courses"))
		api.GET("/courses/:id", s.handleProxyWithParam(s.clients.Course, "/api/v1/courses/", "id"))
		api.PUT("/courses/:id", s.handleProxyWithParam(s.clients.Course, "/api/v1/courses/", "id"))
		api.DELETE("/courses/:id", s.handleProxyWithParam(s.clients.Course, "/api/v1/courses/", "id"))

		// 履修
		api.GET("/enrollments", s.handleProxy(s.clients.Enrollment, "/api/v1/enrollments"))
		api.POST("/enrollments", s.handleProxy(s.clients.Enrollment, "/api/v1/enrollments"))
		api.DELETE("/enrollments/:id", s.handleProxyWithParam(s.clients.Enrollment, "/api/v1/enrollments/", "id"))
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})
}

// handlePublicProxy は認証なしで内部サービスに転送するハンドラを返す。
// 本人情報ヘッダーは付与しない。クライアントが送ってきた同名ヘッダーも
// 転送時に破棄される。
func (s *Server) handlePublicProxy(client *httpclient.Client, path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.doForward(c, client, path, nil)
	}
}

// handleProxy は検証済みの本人情報を付与して内部サービスに転送するハンドラを返す。
func (s *Server) handleProxy(client *httpclient.Client, path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.doForward(c, client, path, s.identityFrom(c))
	}
}

// handleProxyWithParam はURLパラメータを含むパスに転送するハンドラを返す。
func (s *Server) handleProxyWithParam(client *httpclient.Client, pathPrefix, paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.doForward(c, client, pathPrefix+c.Param(paramName), s.identityFrom(c))
	}
}

// identityFrom はGinコンテキストから検証済みの本人情報を取り出す。
// TokenAuthミドルウェアを通過したリクエストでのみ値を持つ。
func (s *Server) identityFrom(c *gin.Context) *httpclient.Identity {
	return &httpclient.Identity{
		UserID: middleware.GetUserID(c),
		Role:   middleware.GetUserRole(c),
	}
}

// doForward はリクエストを内部サービスに転送する共通処理。
func (s *Server) doForward(c *gin.Context, client *httpclient.Client, path string, identity *httpclient.Identity) {
	result, err := client.Forward(c.Request.Context(), c.Request.Method, path, c.Request, identity)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "内部サービスとの通信に失敗しました"})
		log.Printf("転送エラー: path=%s, error=%v", path, err)
		return
	}

	c.Data(result.StatusCode, result.ContentType, result.Body)
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
