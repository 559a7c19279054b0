package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"study-tracker/internal/config"
	"study-tracker/internal/database"
	"study-tracker/internal/models"
	"study-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func setupDB(t *testing.T) (*gorm.DB, models.User) {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "mw.db")})
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	user := models.User{Username: "alice", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return db, user
}

func issueToken(t *testing.T, db *gorm.DB, userID uint, sessionID string, expires time.Time) string {
	t.Helper()
	if err := db.Create(&models.LoginSession{ID: sessionID, UserID: userID, ExpiresAt: expires}).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
	token, err := util.GenerateToken(testSecret, "test", sessionID, userID, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

func newEngine(db *gorm.DB, key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := gin.New()
	r.Use(RequestLogger(logger))
	var cipher *util.AuditCipher
	if key != "" {
		cipher, _ = util.NewAuditCipher(key)
	}
	g := r.Group("/api", AuthMiddleware(testSecret, db), AuditMiddleware(db, cipher, logger))
	g.GET("/me", func(c *gin.Context) {
		user := c.MustGet("currentUser").(*models.User)
		util.Success(c, util.Response{"id": user.ID, "session": c.GetString("sessionID")})
	})
	g.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "text/plain", body)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	db, user := setupDB(t)
	r := newEngine(db, "")
	token := issueToken(t, db, user.ID, "sess-ok", time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		setup  func(req *http.Request)
		status int
	}{
		{"no token", func(req *http.Request) {}, http.StatusUnauthorized},
		{"bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"query", func(req *http.Request) { req.URL.RawQuery = "token=" + token }, http.StatusOK},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token}) }, http.StatusOK},
		{"garbage", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_RevokedAndExpiredSessions(t *testing.T) {
	db, user := setupDB(t)
	r := newEngine(db, "")

	revoked := issueToken(t, db, user.ID, "sess-revoked", time.Now().Add(time.Hour))
	db.Model(&models.LoginSession{}).Where("id = ?", "sess-revoked").Update("revoked", true)
	expired := issueToken(t, db, user.ID, "sess-expired", time.Now().Add(-time.Minute))
	unknown, _ := util.GenerateToken(testSecret, "test", "sess-missing", user.ID, time.Hour)

	for name, token := range map[string]string{"revoked": revoked, "expired": expired, "unknown": unknown} {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s session: status = %d, want 401", name, w.Code)
		}
	}
}

func TestAuditMiddleware(t *testing.T) {
	db, user := setupDB(t)
	key := "audit-key"
	r := newEngine(db, key)
	token := issueToken(t, db, user.ID, "sess-audit", time.Now().Add(time.Hour))

	body := `{"date":"2024-01-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/echo", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != body {
		t.Errorf("handler should still see the body, got %q", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(httptest.NewRecorder(), req)

	var logs []models.AuditLog
	db.Where("user_id = ?", user.ID).Find(&logs)
	if len(logs) != 1 {
		t.Fatalf("audit rows = %d, want 1 (GET is not audited)", len(logs))
	}
	l := logs[0]
	if l.Method != http.MethodPost || l.Status != http.StatusOK {
		t.Errorf("log = %+v", l)
	}
	if got := openField(t, key, l.ActionEnc); got != "POST /api/echo "+body {
		t.Errorf("action = %q", got)
	}
}

func openField(t *testing.T, key, enc string) string {
	t.Helper()
	c, err := util.NewAuditCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	plain, err := c.Open(enc)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	return plain
}

func postEcho(t *testing.T, r *gin.Engine, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/echo", body)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuditMiddleware_RedactsSecrets(t *testing.T) {
	db, user := setupDB(t)
	key := "audit-key"
	r := newEngine(db, key)
	token := issueToken(t, db, user.ID, "sess-redact", time.Now().Add(time.Hour))

	body := `{"old_password":"OldSecret1","new_password":"NewSecret2","profile":{"api_token":"t0k"},"note":"ok"}`
	postEcho(t, r, token, strings.NewReader(body))

	var l models.AuditLog
	if err := db.Where("user_id = ?", user.ID).First(&l).Error; err != nil {
		t.Fatalf("audit row: %v", err)
	}
	action := openField(t, key, l.ActionEnc)
	for _, secret := range []string{"OldSecret1", "NewSecret2", "t0k"} {
		if strings.Contains(action, secret) {
			t.Errorf("action leaks %q: %s", secret, action)
		}
	}
	want := `POST /api/echo {"new_password":"***","note":"ok","old_password":"***","profile":{"api_token":"***"}}`
	if action != want {
		t.Errorf("action = %s\nwant   %s", action, want)
	}

	// 非 JSON 请求体不记录
	db.Where("user_id = ?", user.ID).Delete(&models.AuditLog{})
	postEcho(t, r, token, strings.NewReader("password=OldSecret1"))
	var form models.AuditLog
	if err := db.Where("user_id = ?", user.ID).First(&form).Error; err != nil {
		t.Fatalf("audit row: %v", err)
	}
	if got := openField(t, key, form.ActionEnc); got != "POST /api/echo" {
		t.Errorf("form body action = %q", got)
	}
}

func TestAuditMiddleware_NoKeySkipsBody(t *testing.T) {
	db, user := setupDB(t)
	r := newEngine(db, "")
	token := issueToken(t, db, user.ID, "sess-nokey", time.Now().Add(time.Hour))

	postEcho(t, r, token, strings.NewReader(`{"new_password":"NewSecret2"}`))

	var l models.AuditLog
	if err := db.Where("user_id = ?", user.ID).First(&l).Error; err != nil {
		t.Fatalf("audit row: %v", err)
	}
	if l.ActionEnc != "POST /api/echo" || strings.Contains(l.ActionEnc, "NewSecret2") {
		t.Errorf("action = %q, want method and path only", l.ActionEnc)
	}
}

func TestAuditMiddleware_LargeBody(t *testing.T) {
	db, user := setupDB(t)
	key := "audit-key"
	r := newEngine(db, key)
	token := issueToken(t, db, user.ID, "sess-large", time.Now().Add(time.Hour))

	body := `{"reason":"` + strings.Repeat("x", 5000) + `"}`
	w := postEcho(t, r, token, strings.NewReader(body))
	if w.Body.String() != body {
		t.Errorf("handler saw %d bytes, want %d", w.Body.Len(), len(body))
	}

	var l models.AuditLog
	if err := db.Where("user_id = ?", user.ID).First(&l).Error; err != nil {
		t.Fatalf("audit row: %v", err)
	}
	if got := openField(t, key, l.ActionEnc); got != "POST /api/echo" {
		t.Errorf("oversized body should not be recorded, action = %.60q", got)
	}
}

func TestRequestLogger_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("requestID")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(RequestIDHeader)
	if len(id) != 36 || w.Body.String() != id {
		t.Errorf("generated id = %q, body %q", id, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "abc" {
		t.Errorf("incoming id not propagated: %q", w.Header().Get(RequestIDHeader))
	}
}
