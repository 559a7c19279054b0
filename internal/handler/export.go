package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"study-tracker/internal/export"
	"study-tracker/internal/study"
	"study-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// ExportHandler 导出当前用户的全部学习记录
type ExportHandler struct {
	Registry *study.Registry
	Logger   *slog.Logger
}

func NewExportHandler(reg *study.Registry, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{Registry: reg, Logger: logger}
}

// Export GET /api/export?format=csv|xlsx|json|yaml
func (h *ExportHandler) Export(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	exp, err := export.NewExporter(c.DefaultQuery("format", "csv"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "不支持的导出格式")
		return
	}

	var history study.SessionsMap
	err = h.Registry.Do(user.ID, func(t *study.Tracker) error {
		var err error
		history, err = t.Aggregator().History(c.Request.Context())
		return err
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	// 先写入缓冲区，失败时仍可返回 JSON 错误
	var buf bytes.Buffer
	if err := exp.Export(history, &buf); err != nil {
		h.Logger.Error("export failed", "err", err, "format", exp.Extension())
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "导出失败")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"study_%s.%s\"",
		time.Now().Format("20060102"), exp.Extension()))
	c.Data(http.StatusOK, exp.ContentType(), buf.Bytes())
}
