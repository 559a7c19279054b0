package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"study-tracker/internal/models"
	"study-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TokenCookie 前端可选用的 cookie 名
const TokenCookie = "st_token"

// AuthMiddleware 校验 JWT 及其登录会话，并在 context 里放入当前用户和会话 ID。
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "登录已失效，请重新登录")
			c.Abort()
			return
		}

		// 会话必须存在、未注销、未过期
		var sess models.LoginSession
		if err := db.First(&sess, "id = ?", claims.SessionID()).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "登录已失效，请重新登录")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询会话失败")
			}
			c.Abort()
			return
		}
		if sess.Revoked || sess.UserID != claims.UserID || time.Now().After(sess.ExpiresAt) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "登录已失效，请重新登录")
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "用户不存在")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询用户失败")
			}
			c.Abort()
			return
		}

		c.Set("currentUser", &user)
		c.Set("sessionID", sess.ID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	// 1) Header: Authorization: Bearer xxx
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	// 2) URL 查询参数 ?token=xxx（用于下载、SSE 等无法自定义 Header 的场景）
	if tok := c.Query("token"); tok != "" {
		return tok
	}

	// 3) Cookie
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}
