// Package response 提供统一的 HTTP 响应封装
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	// 业务码，0 表示成功
	Code int `json:"code"`
	// 提示信息
	Message string `json:"message"`
	// 业务数据
	Data interface{} `json:"data,omitempty"`
	// 错误码标识
	ErrorCode string `json:"error_code,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应，HTTP 500
func Error(c *gin.Context, message, errorCode string) {
	ErrorWithStatus(c, http.StatusInternalServerError, message, errorCode)
}

// ErrorWithStatus 带状态码的错误响应
func ErrorWithStatus(c *gin.Context, status int, message, errorCode string) {
	c.JSON(status, Response{
		Code:      status,
		Message:   message,
		ErrorCode: errorCode,
	})
}
