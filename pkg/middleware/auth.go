package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/campus/pkg/role"
	"github.com/nao1215/campus/pkg/token"
)

// Ginコンテキストに検証済みの本人情報を格納するキー。
const (
	contextKeyUserID   = "user_id"
	contextKeyUserRole = "user_role"
)

// TokenAuth はBearerトークンを検証するGinミドルウェアを返す。
//
// Authorizationヘッダーからトークンを取り出し、codecで検証する。
// 検証に成功した場合はコンテキストにユーザーIDとロールを設定する。
// 失敗理由（形式不正・署名不一致・期限切れ）はクライアントには
// 区別できない同一のメッセージで返し、内部ログにのみ詳細を残す。
func TokenAuth(codec *token.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "認証ヘッダーがないか不正です",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "認証ヘッダーがないか不正です",
			})
			return
		}

		claims, err := codec.Verify(tokenString)
		if err != nil {
			log.Printf("トークン検証に失敗: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンが無効または期限切れです",
			})
			return
		}

		c.Set(contextKeyUserID, claims.Username())
		c.Set(contextKeyUserRole, claims.UserRole().String())
		c.Next()
	}
}

// GetUserID はGinコンテキストから検証済みのユーザーIDを取得する。
// TokenAuthミドルウェアが事前に適用されている必要がある。
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get(contextKeyUserID)
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetUserRole はGinコンテキストから検証済みのロールを取得する。
// TokenAuthミドルウェアが事前に適用されている必要がある。
func GetUserRole(c *gin.Context) role.Role {
	userRole, _ := c.Get(contextKeyUserRole)
	if r, ok := userRole.(string); ok {
		return role.Role(r)
	}
	return ""
}
