package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"study-tracker/internal/models"
	"study-tracker/internal/study"
	"study-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser 取出 AuthMiddleware 放入的用户，没有时直接返回 401。
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
		return nil, false
	}
	return user, true
}

// respondError 把计时核心的错误映射为 HTTP 状态码和业务码。
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var winErr *study.WindowError
	switch {
	case errors.As(err, &winErr):
		util.Error(c, http.StatusUnprocessableEntity, util.CodeTimeWindow,
			"不在"+winErr.Period.Label()+"计时时段（"+winErr.Window.String()+"）内")
	case errors.Is(err, study.ErrTimeWindowViolation):
		util.Error(c, http.StatusUnprocessableEntity, util.CodeTimeWindow, "不在允许的计时时段内")
	case errors.Is(err, study.ErrLeaveDayActive):
		util.Error(c, http.StatusUnprocessableEntity, util.CodeLeaveDay, "今天已请假，无法开始计时")
	case errors.Is(err, study.ErrTimerRunning):
		util.Error(c, http.StatusConflict, util.CodeConflict, "计时器已在运行")
	case errors.Is(err, study.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "记录不存在")
	case errors.Is(err, study.ErrInvalidInput):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
	case errors.Is(err, study.ErrStoreUnavailable):
		logger.Error("store unavailable", "err", err, "path", c.FullPath())
		util.Error(c, http.StatusServiceUnavailable, util.CodeStoreUnavailable, "存储暂不可用，请稍后重试")
	default:
		logger.Error("unexpected error", "err", err, "path", c.FullPath())
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "服务器内部错误")
	}
}

// dateParam 读取必填的 ?date=
func dateParam(c *gin.Context) (string, bool) {
	date := c.Query("date")
	if err := util.ValidateDate(date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "日期格式应为 YYYY-MM-DD")
		return "", false
	}
	return date, true
}

func formatTotals(t study.Totals) gin.H {
	return gin.H{
		"morning":   study.FormatChinese(t.Morning),
		"afternoon": study.FormatChinese(t.Afternoon),
		"day":       study.FormatChinese(t.Day),
	}
}

// storeErr 将直接访问存储时的底层错误归为 ErrStoreUnavailable。
func storeErr(err error) error {
	if errors.Is(err, study.ErrNotFound) || errors.Is(err, study.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", study.ErrStoreUnavailable, err)
}
