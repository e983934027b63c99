package handler

import (
	"errors"
	"net/http"

	"github.com/blues/rewardcenter/internal/logger"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// errorStatus 将错误类别映射为 HTTP 状态码
func errorStatus(err error) int {
	switch {
	case errors.Is(err, rewards.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, rewards.ErrUnknownEntry):
		return http.StatusNotFound
	case errors.Is(err, rewards.ErrDuplicateEntry):
		return http.StatusConflict
	case errors.Is(err, rewards.ErrInvalidStage),
		errors.Is(err, rewards.ErrNotExpired):
		return http.StatusConflict
	case errors.Is(err, rewards.ErrWrongPledgeAmount),
		errors.Is(err, rewards.ErrIndexOutOfRange),
		errors.Is(err, rewards.ErrInvalidArgument),
		errors.Is(err, errBadParam):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError 按错误类别返回
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	ErrorResponse(c, status, err.Error())
}
