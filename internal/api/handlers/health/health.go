package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"parfum-formulator/internal/core/cache"
	"parfum-formulator/internal/core/notes"
	"parfum-formulator/internal/infrastructure/config"
	"parfum-formulator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// readyTimeout 就緒檢查時儲存 ping 的逾時
const readyTimeout = 2 * time.Second

// Pinger 可檢查連線狀態的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Catalog   CatalogStatus          `json:"catalog"`
	Cache     *cache.Stats           `json:"cache,omitempty"`
	Storage   string                 `json:"storage"`
}

// CatalogStatus 原料目錄狀態
type CatalogStatus struct {
	Entries     int `json:"entries"`
	Aliases     int `json:"aliases"`
	UserAliases int `json:"user_aliases"`
}

// Handler 健康檢查處理器
type Handler struct {
	cfg          *config.Config
	resolver     *notes.Resolver
	cacheManager *cache.CacheManager
	store        Pinger
}

// NewHandler 創建健康檢查處理器；cacheManager 可為 nil
func NewHandler(cfg *config.Config, resolver *notes.Resolver, cacheManager *cache.CacheManager, store Pinger) *Handler {
	return &Handler{
		cfg:          cfg,
		resolver:     resolver,
		cacheManager: cacheManager,
		store:        store,
	}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	catalog := h.resolver.Catalog()
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Catalog: CatalogStatus{
			Entries:     catalog.Len(),
			Aliases:     catalog.AliasCount(),
			UserAliases: h.resolver.Aliases().Len(),
		},
		Storage: h.cfg.Storage.Driver,
	}
	if h.cacheManager != nil {
		stats := h.cacheManager.GetStats()
		response.Cache = &stats
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：目錄已載入且儲存可連線
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.resolver.Catalog().Len() == 0 {
		common.WriteErrorResponse(c, common.ErrServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		common.LogWarn("儲存無法連線", zap.Error(err))
		common.WriteErrorResponse(c, common.ErrServiceUnavailable.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
