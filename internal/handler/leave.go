package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"study-tracker/internal/study"
	"study-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// LeaveHandler 负责请假日的增删查
type LeaveHandler struct {
	Leaves study.LeaveStore
	Logger *slog.Logger
}

func NewLeaveHandler(leaves study.LeaveStore, logger *slog.Logger) *LeaveHandler {
	return &LeaveHandler{Leaves: leaves, Logger: logger}
}

// Get GET /api/leave-days?date=YYYY-MM-DD，未请假时 leave 为 null
func (h *LeaveHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	date, ok := dateParam(c)
	if !ok {
		return
	}

	leave, err := h.Leaves.GetLeave(c.Request.Context(), user.ID, date)
	if err != nil {
		respondError(c, h.Logger, storeErr(err))
		return
	}

	util.Success(c, util.Response{
		"date":     date,
		"on_leave": leave != nil,
		"leave":    leave,
	})
}

type putLeaveReq struct {
	Date   string  `json:"date" binding:"required"`
	Reason *string `json:"reason"`
}

// Put POST /api/leave-days，同一天重复提交会覆盖原因
func (h *LeaveHandler) Put(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req putLeaveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}
	if err := util.ValidateDate(req.Date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "日期格式应为 YYYY-MM-DD")
		return
	}
	if req.Reason != nil {
		reason := strings.TrimSpace(*req.Reason)
		if err := util.ValidateReason(reason); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请假原因最多 255 个字符")
			return
		}
		if reason == "" {
			req.Reason = nil
		} else {
			req.Reason = &reason
		}
	}

	leave, err := h.Leaves.PutLeave(c.Request.Context(), user.ID, req.Date, req.Reason)
	if err != nil {
		respondError(c, h.Logger, storeErr(err))
		return
	}

	util.Success(c, util.Response{
		"leave": leave,
	})
}

// Delete DELETE /api/leave-days?date=YYYY-MM-DD
func (h *LeaveHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	date, ok := dateParam(c)
	if !ok {
		return
	}

	if err := h.Leaves.DeleteLeave(c.Request.Context(), user.ID, date); err != nil {
		respondError(c, h.Logger, storeErr(err))
		return
	}

	util.Success(c, util.Response{
		"message": "已取消请假",
		"date":    date,
	})
}
