package router

import (
	"net/http"

	"study-tracker/internal/app"
	"study-tracker/internal/handler"
	"study-tracker/internal/middleware"
	"study-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin engine and every API route.
func SetupRouter(c *app.Container) *gin.Engine {
	cfg := c.Config
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(c.Logger), gin.Recovery())

	r.GET("/healthz", func(ctx *gin.Context) {
		util.Success(ctx, util.Response{"status": "ok"})
	})

	// 公开只读分享
	shareHandler := handler.NewShareHandler(c.Shares, c.Registry, cfg.Share.BaseURL, c.Logger)
	r.GET("/share/:code", shareHandler.Read)

	// ====== API ======
	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	// 登录/注册接口（不需要鉴权）
	authHandler := handler.NewAuthHandler(c.DB, jwtSecret, cfg.JWT.Issuer, cfg.JWT.ExpireHours, cfg.Security.BcryptCost, c.Logger)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// 未配置密钥时审计只记录方法和路径
	auditCipher, err := util.NewAuditCipher(cfg.Security.EncryptionKey)
	if err != nil {
		c.Logger.Warn("audit log is not encrypted, request bodies are skipped", "err", err)
		auditCipher = nil
	}

	// 需要登录才能访问的接口
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, c.DB),
		middleware.AuditMiddleware(c.DB, auditCipher, c.Logger),
	)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(c.DB))
	protected.POST("/profile/password", handler.ChangePassword(c.DB, cfg.Security.BcryptCost))

	timerHandler := handler.NewTimerHandler(c.Registry, cfg.TickInterval(), c.Logger)
	protected.GET("/timer", timerHandler.Status)
	protected.POST("/timer/:period/start", timerHandler.Start)
	protected.POST("/timer/:period/stop", timerHandler.Stop)
	protected.GET("/timer/:period/stream", timerHandler.Stream)

	sessionHandler := handler.NewSessionHandler(c.Registry, c.Location(), c.Logger)
	protected.GET("/study-sessions", sessionHandler.GetDay)
	protected.GET("/study-sessions/history", sessionHandler.History)
	protected.POST("/study-sessions", sessionHandler.Create)
	protected.DELETE("/study-sessions", sessionHandler.ClearDay)

	leaveHandler := handler.NewLeaveHandler(c.Store, c.Logger)
	protected.GET("/leave-days", leaveHandler.Get)
	protected.POST("/leave-days", leaveHandler.Put)
	protected.DELETE("/leave-days", leaveHandler.Delete)

	protected.POST("/share", shareHandler.Create)
	protected.GET("/share", shareHandler.List)
	protected.DELETE("/share/:code", shareHandler.Deactivate)

	exportHandler := handler.NewExportHandler(c.Registry, c.Logger)
	protected.GET("/export", exportHandler.Export)

	logHandler := handler.NewLogHandler(c.DB, auditCipher, cfg.App.PageSize)
	protected.GET("/logs", logHandler.ListLogs)

	r.NoRoute(func(ctx *gin.Context) {
		util.Error(ctx, http.StatusNotFound, util.CodeNotFound, "接口不存在")
	})

	return r
}
