package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"study-tracker/internal/study"
	"study-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// ShareHandler 负责分享快照的创建、列表、撤销与公开读取
type ShareHandler struct {
	Shares   *study.ShareService
	Registry *study.Registry
	BaseURL  string
	Logger   *slog.Logger
}

func NewShareHandler(shares *study.ShareService, reg *study.Registry, baseURL string, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{Shares: shares, Registry: reg, BaseURL: strings.TrimRight(baseURL, "/"), Logger: logger}
}

func (h *ShareHandler) shareURL(c *gin.Context, code string) string {
	base := h.BaseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/share/" + code
}

type createShareReq struct {
	Sessions study.SessionsMap `json:"sessions"`
}

type shareItem struct {
	Code      string    `json:"code"`
	URL       string    `json:"url"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Create POST /api/share，body 可省略，省略时分享全部历史记录
func (h *ShareHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createShareReq
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
			return
		}
	}
	for date := range req.Sessions {
		if err := util.ValidateDate(date); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "日期格式应为 YYYY-MM-DD")
			return
		}
	}
	if err := req.Sessions.Validate(); err != nil || !req.Sessions.Consistent() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "学习时长与起止时间不一致")
		return
	}

	sessions := req.Sessions
	if sessions == nil {
		err := h.Registry.Do(user.ID, func(t *study.Tracker) error {
			var err error
			sessions, err = t.Aggregator().History(c.Request.Context())
			return err
		})
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
	}
	if len(sessions) == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "没有可分享的学习记录")
		return
	}

	snap, err := h.Shares.Create(c.Request.Context(), user.ID, sessions)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	h.Logger.Info("share created", "user_id", user.ID, "days", len(sessions))
	util.Success(c, util.Response{
		"code":       snap.Code,
		"url":        h.shareURL(c, snap.Code),
		"created_at": snap.CreatedAt,
	})
}

// List GET /api/share 当前用户的分享，新的在前
func (h *ShareHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	snaps, err := h.Shares.List(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	items := make([]shareItem, 0, len(snaps))
	for _, s := range snaps {
		items = append(items, shareItem{
			Code:      s.Code,
			URL:       h.shareURL(c, s.Code),
			Active:    s.Active,
			CreatedAt: s.CreatedAt,
		})
	}
	util.Success(c, util.Response{
		"items": items,
		"total": len(items),
	})
}

// Deactivate DELETE /api/share/:code，只能撤销自己的分享，重复撤销仍返回成功
func (h *ShareHandler) Deactivate(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	code := c.Param("code")

	found, err := h.Shares.DeactivateOwned(c.Request.Context(), user.ID, code)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if !found {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "分享不存在")
		return
	}

	util.Success(c, util.Response{
		"code":   code,
		"active": false,
	})
}

// Read GET /share/:code 公开只读，已撤销与不存在的分享一律 404
func (h *ShareHandler) Read(c *gin.Context) {
	code := c.Param("code")

	sessions, err := h.Shares.Read(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, study.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "分享不存在或已失效")
			return
		}
		respondError(c, h.Logger, err)
		return
	}

	total := sessions.TotalSeconds()
	util.Success(c, util.Response{
		"code":      code,
		"sessions":  sessions,
		"total":     total,
		"formatted": study.FormatChinese(total),
	})
}
