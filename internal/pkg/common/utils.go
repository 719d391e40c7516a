package common

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WriteErrorResponse 以統一格式寫入錯誤響應
func WriteErrorResponse(c *gin.Context, err error) {
	status, resp := ToResponse(err)
	if status >= 500 {
		LogError("Request failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.Writer.Header().Get("X-Request-ID")),
		)
	}
	c.AbortWithStatusJSON(status, resp)
}
