package handler

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"study-tracker/internal/study"
	"study-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// TimerHandler 驱动上午/下午两个计时器
type TimerHandler struct {
	Registry *study.Registry
	Tick     time.Duration
	Logger   *slog.Logger
}

func NewTimerHandler(reg *study.Registry, tick time.Duration, logger *slog.Logger) *TimerHandler {
	if tick <= 0 {
		tick = time.Second
	}
	return &TimerHandler{Registry: reg, Tick: tick, Logger: logger}
}

func (h *TimerHandler) period(c *gin.Context) (study.Period, bool) {
	p, err := study.ParsePeriod(c.Param("period"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "时段只能是 morning 或 afternoon")
		return "", false
	}
	return p, true
}

// Status GET /api/timer
func (h *TimerHandler) Status(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var (
		timers []study.TimerStatus
		totals study.Totals
		date   string
	)
	err := h.Registry.Do(user.ID, func(t *study.Tracker) error {
		var err error
		date = t.Today()
		timers, totals, err = t.Status(c.Request.Context())
		return err
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	util.Success(c, util.Response{
		"date":      date,
		"timers":    timers,
		"totals":    totals,
		"formatted": formatTotals(totals),
	})
}

// Start POST /api/timer/:period/start
func (h *TimerHandler) Start(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	p, ok := h.period(c)
	if !ok {
		return
	}

	var st study.TimerStatus
	err := h.Registry.Do(user.ID, func(t *study.Tracker) error {
		var err error
		st, err = t.Start(c.Request.Context(), p)
		return err
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	h.Logger.Info("timer started", "user_id", user.ID, "period", p)
	util.Success(c, util.Response{
		"timer": st,
		"clock": study.FormatClock(st.Elapsed),
	})
}

// Stop POST /api/timer/:period/stop，计时器未运行时 stopped=false
func (h *TimerHandler) Stop(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	p, ok := h.period(c)
	if !ok {
		return
	}

	var res study.StopResult
	err := h.Registry.Do(user.ID, func(t *study.Tracker) error {
		var err error
		res, err = t.Stop(c.Request.Context(), p)
		return err
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	resp := util.Response{
		"stopped":   res.Stopped,
		"totals":    res.Totals,
		"formatted": formatTotals(res.Totals),
	}
	if res.Stopped {
		h.Logger.Info("timer stopped", "user_id", user.ID, "period", p, "duration", res.Session.Duration)
		resp["session"] = res.Session
		resp["date"] = res.Date
		resp["duration"] = study.FormatChinese(res.Session.Duration)
	}
	util.Success(c, resp)
}

// Stream GET /api/timer/:period/stream，以 SSE 推送实时秒数，计时停止后发送 stopped 事件并结束。
func (h *TimerHandler) Stream(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	p, ok := h.period(c)
	if !ok {
		return
	}

	var ticks <-chan int64
	err := h.Registry.Do(user.ID, func(t *study.Tracker) error {
		var err error
		ticks, err = t.Watch(c.Request.Context(), p, h.Tick)
		return err
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		elapsed, ok := <-ticks
		if !ok {
			c.SSEvent("stopped", gin.H{"period": p})
			return false
		}
		c.SSEvent("elapsed", gin.H{
			"period":  p,
			"elapsed": elapsed,
			"clock":   study.FormatClock(elapsed),
		})
		return true
	})
}
