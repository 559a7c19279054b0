package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"study-tracker/internal/study"
	"study-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// SessionHandler 负责学习记录的查询、补录与清空
type SessionHandler struct {
	Registry *study.Registry
	Location *time.Location
	Logger   *slog.Logger
}

func NewSessionHandler(reg *study.Registry, loc *time.Location, logger *slog.Logger) *SessionHandler {
	if loc == nil {
		loc = time.Local
	}
	return &SessionHandler{Registry: reg, Location: loc, Logger: logger}
}

// GetDay GET /api/study-sessions?date=YYYY-MM-DD（缺省为今天）
func (h *SessionHandler) GetDay(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	date := c.Query("date")
	if date != "" {
		if err := util.ValidateDate(date); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "日期格式应为 YYYY-MM-DD")
			return
		}
	}

	var rec study.DayRecord
	err := h.Registry.Do(user.ID, func(t *study.Tracker) error {
		if date == "" {
			date = t.Today()
		}
		var err error
		rec, err = t.Aggregator().Day(c.Request.Context(), date)
		return err
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	day, _ := study.ParseDateKey(date)
	totals := rec.Totals()
	util.Success(c, util.Response{
		"date":      date,
		"heading":   study.FormatDateChinese(day),
		"sessions":  rec,
		"totals":    totals,
		"formatted": formatTotals(totals),
	})
}

// History GET /api/study-sessions/history
func (h *SessionHandler) History(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var history study.SessionsMap
	err := h.Registry.Do(user.ID, func(t *study.Tracker) error {
		var err error
		history, err = t.Aggregator().History(c.Request.Context())
		return err
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	total := history.TotalSeconds()
	util.Success(c, util.Response{
		"sessions":  history,
		"days":      len(history),
		"total":     total,
		"formatted": study.FormatChinese(total),
	})
}

type createSessionReq struct {
	Date      string    `json:"date"`
	Period    string    `json:"period" binding:"required"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// Create POST /api/study-sessions 手动补录一段学习记录，时长由起止时间计算。
func (h *SessionHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}
	req.Period = strings.TrimSpace(req.Period)
	if err := util.ValidatePeriod(req.Period); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "时段只能是 morning 或 afternoon")
		return
	}
	if err := util.ValidateTimeRange(req.StartTime, req.EndTime); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "起止时间无效")
		return
	}
	start, end := req.StartTime.In(h.Location), req.EndTime.In(h.Location)
	if req.Date == "" {
		req.Date = study.DateKey(start)
	}
	if err := util.ValidateDate(req.Date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "日期格式应为 YYYY-MM-DD")
		return
	}

	session := study.NewSession(start, end)
	var rec study.DayRecord
	err := h.Registry.Do(user.ID, func(t *study.Tracker) error {
		var err error
		rec, err = t.Aggregator().Record(c.Request.Context(), req.Date, study.Period(req.Period), session)
		return err
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	totals := rec.Totals()
	util.Success(c, util.Response{
		"date":      req.Date,
		"session":   session,
		"sessions":  rec,
		"totals":    totals,
		"formatted": formatTotals(totals),
	})
}

// ClearDay DELETE /api/study-sessions?date=YYYY-MM-DD，date 必填
func (h *SessionHandler) ClearDay(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	date, ok := dateParam(c)
	if !ok {
		return
	}

	err := h.Registry.Do(user.ID, func(t *study.Tracker) error {
		return t.Aggregator().ClearDay(c.Request.Context(), date)
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	util.Success(c, util.Response{
		"message": "已清空",
		"date":    date,
	})
}
