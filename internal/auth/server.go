package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	authdb "github.com/nao1215/campus/internal/auth/db"
	"github.com/nao1215/campus/pkg/middleware"
	"github.com/nao1215/campus/pkg/migration"
	"github.com/nao1215/campus/pkg/password"
	"github.com/nao1215/campus/pkg/token"
)

// Server は認証サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *authdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// issuer は認証情報の検証とトークン発行を担う。
	issuer *Issuer
}

// NewServer は新しい認証サーバーを生成する。
// SQLiteデータベースの初期化とマイグレーションの適用を行い、
// 秘密鍵は環境変数から一度だけ読み込む。
func NewServer(port string) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", getEnvOr("AUTH_DB_PATH", "/data/auth.db")+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := migration.Run(context.Background(), sqlDB, migrationsFS, "migrations"); err != nil {
		return nil, fmt.Errorf("マイグレーションの適用に失敗: %w", err)
	}

	codec, err := token.NewCodec(getEnvOr("JWT_SECRET", "dev-secret-key"))
	if err != nil {
		return nil, fmt.Errorf("トークンコーデックの初期化に失敗: %w", err)
	}

	queries := authdb.New(sqlDB)
	issuer, err := NewIssuer(queries, password.NewBcryptHasher(), password.Permissive, codec)
	if err != nil {
		return nil, fmt.Errorf("Issuerの初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:  router,
		port:    port,
		queries: queries,
		db:      sqlDB,
		issuer:  issuer,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Handler はHTTPハンドラを返す。テストや組み込み用途で使用する。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	auth := s.router.Group("/auth")
	{
		// ログイン（トークン発行）
		auth.POST("/login", s.handleLogin())
		// ユーザー登録
		auth.POST("/register", s.handleRegister())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "auth"})
	})
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Username はユーザー名。
	Username string `json:"username" binding:"required"`
	// Password は平文パスワード。リクエストスコープ限りで保持し、
	// 永続化もログ出力もしない。
	Password string `json:"password" binding:"required"`
}

// registerRequest はユーザー登録リクエストのJSON構造。
// 入力検証はIssuer側に一本化しているため、bindingタグは付けない。
type registerRequest struct {
	// Username はユーザー名。
	Username string `json:"username"`
	// Password は平文パスワード。
	Password string `json:"password"`
	// Role はロール文字列。
	Role string `json:"role"`
}

// handleLogin はログインを処理するハンドラを返す。
// 認証失敗の理由（ユーザー名不存在・パスワード不一致）は
// レスポンスから区別できない。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証情報が無効です"})
			return
		}

		result, err := s.issuer.Login(c.Request.Context(), req.Username, req.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			log.Printf("ログイン試行に失敗: username=%s", req.Username)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証情報が無効です"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ログイン処理に失敗しました"})
			log.Printf("ログイン処理エラー: %v", err)
			return
		}

		log.Printf("ユーザー %s がログインしました", result.Username)
		c.JSON(http.StatusOK, gin.H{
			"token":    result.Token,
			"username": result.Username,
		})
	}
}

// handleRegister はユーザー登録を処理するハンドラを返す。
// 検証エラーはどの項目が不正かを示す400を、ストア障害は500を返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です"})
			return
		}

		err := s.issuer.Register(c.Request.Context(), req.Username, req.Password, req.Role)
		var vErr *ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message})
			return
		case errors.Is(err, ErrDuplicateUsername):
			c.JSON(http.StatusBadRequest, gin.H{"error": "このユーザー名は既に使用されています"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "登録処理に失敗しました"})
			log.Printf("ユーザー登録エラー: %v", err)
			return
		}

		log.Printf("新しいユーザーを登録しました: username=%s, role=%s", req.Username, req.Role)
		c.JSON(http.StatusCreated, gin.H{"message": "ユーザー登録が完了しました"})
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
