package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"study-tracker/internal/models"
	"study-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 请求体达到该长度时不写入审计动作
const maxAuditBody = 2000

const redacted = "***"

// 字段名包含这些词时，值不进审计日志
var sensitiveFields = []string{"password", "token", "secret"}

type replayBody struct {
	io.Reader
	io.Closer
}

// AuditMiddleware 记录登录用户的写操作，路径和动作加密存储。
// 必须挂在 AuthMiddleware 之后。cipher 为 nil 时只记录方法和路径，不记录请求体。
func AuditMiddleware(db *gorm.DB, cipher *util.AuditCipher, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint
		if v, ok := c.Get("currentUser"); ok {
			if user, ok := v.(*models.User); ok && user != nil {
				userID = user.ID
			}
		}

		// 读操作（包括 SSE）不记录
		if userID == 0 || c.Request.Method == "GET" {
			c.Next()
			return
		}

		// 最多读 maxAuditBody 字节，其余部分原样留给 handler
		var head []byte
		if c.Request.Body != nil && cipher != nil {
			orig := c.Request.Body
			head, _ = io.ReadAll(io.LimitReader(orig, maxAuditBody))
			c.Request.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(head), orig), Closer: orig}
		}

		c.Next()

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(head) > 0 && len(head) < maxAuditBody {
			if body, ok := redactBody(head); ok {
				action += " " + body
			}
		}

		encPath, encAction := path, action
		if cipher != nil {
			var err error
			if encPath, err = cipher.Seal(path); err == nil {
				encAction, err = cipher.Seal(action)
			}
			if err != nil {
				logger.Warn("audit encrypt failed", "err", err)
				return
			}
		}

		log := models.AuditLog{
			UserID:    &userID,
			PathEnc:   encPath,
			Method:    c.Request.Method,
			ActionEnc: encAction,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := db.Create(&log).Error; err != nil {
			logger.Warn("audit write failed", "err", err, "path", path)
		}
	}
}

// redactBody 把 JSON 请求体中敏感字段的值替换为 ***。
// 非 JSON 的请求体返回 false，不记录。
func redactBody(body []byte) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	out, err := json.Marshal(redactValue(v))
	if err != nil {
		return "", false
	}
	return string(out), true
}

func redactValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			if isSensitiveField(k) {
				x[k] = redacted
				continue
			}
			x[k] = redactValue(val)
		}
	case []any:
		for i := range x {
			x[i] = redactValue(x[i])
		}
	}
	return v
}

func isSensitiveField(name string) bool {
	name = strings.ToLower(name)
	for _, f := range sensitiveFields {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}
