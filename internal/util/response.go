package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 通用返回结构里的 data 使用 map
type Response map[string]interface{}

// 业务错误码
const (
	CodeOK               = 0
	CodeInvalidParam     = 40001
	CodeAuth             = 40101
	CodeNotFound         = 40401
	CodeConflict         = 40901 // 计时器已在运行
	CodeTimeWindow       = 42201 // 不在允许的时间段内
	CodeLeaveDay         = 42202 // 当天已请假
	CodeServerErr        = 50001
	CodeStoreUnavailable = 50301
)

// Success 统一成功返回
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"code":    CodeOK,
		"data":    data,
	})
}

// Error 统一错误返回
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"success": false,
		"code":    code,
		"error":   msg,
	})
}
