package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parfum-formulator/internal/pkg/common"
)

// defaultDedupWindow 未設定時的去重時間窗
const defaultDedupWindow = time.Second

// requestLog 記錄每個請求指紋最後一次出現的時間
type requestLog struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	window    time.Duration
	lastSweep time.Time
}

// check 回傳指紋是否在時間窗內出現過，並記錄本次時間
func (l *requestLog) check(fingerprint string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	// 定期清掉過期的指紋
	if now.Sub(l.lastSweep) > 10*l.window {
		for k, t := range l.seen {
			if now.Sub(t) > l.window {
				delete(l.seen, k)
			}
		}
		l.lastSweep = now
	}

	if last, ok := l.seen[fingerprint]; ok && now.Sub(last) <= l.window {
		return true
	}
	l.seen[fingerprint] = now
	return false
}

// Deduplication 擋下時間窗內內容完全相同的寫入請求，避免重複保存配方
func Deduplication(window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		window = defaultDedupWindow
	}
	log := &requestLog{
		seen:      make(map[string]time.Time),
		window:    window,
		lastSweep: time.Now(),
	}

	return func(c *gin.Context) {
		// 只處理 POST 與 PUT
		if c.Request.Method != "POST" && c.Request.Method != "PUT" {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("讀取請求內容失敗", zap.Error(err))
				c.Next()
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 生成請求指紋
		fingerprint := c.Request.Method + ":" + c.Request.URL.Path
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		if log.check(fingerprint, time.Now()) {
			common.LogInfo("重複請求已略過",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			common.WriteErrorResponse(c, common.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
