package middleware

import (
	"time"

	"parfum-formulator/internal/infrastructure/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 記錄請求數量與延遲；路徑使用路由樣板，避免 id 造成標籤爆量
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
