package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parfum-formulator/internal/api"
	"parfum-formulator/internal/core/cache"
	"parfum-formulator/internal/core/formula"
	"parfum-formulator/internal/core/library"
	"parfum-formulator/internal/core/notes"
	"parfum-formulator/internal/infrastructure/catalog"
	"parfum-formulator/internal/infrastructure/config"
	"parfum-formulator/internal/infrastructure/metrics"
	"parfum-formulator/internal/pkg/common"

	"go.uber.org/zap"
)

// startupTimeout 連線儲存與載入目錄的時間上限
const startupTimeout = 30 * time.Second

func main() {
	// 載入設定（.env 可省略）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("master_library_path", cfg.Catalog.MasterLibraryPath),
		zap.String("master_library_url", cfg.Catalog.MasterLibraryURL),
		zap.Float64("acceptance_threshold", cfg.Insights.AcceptanceThreshold),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStart()

	// 初始化儲存
	store, err := library.NewStore(startCtx, cfg.Storage)
	if err != nil {
		common.LogFatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	// 使用者別名只放在別名表，目錄只含內建別名
	userAliases, err := library.NewAliasStore(store).Load(startCtx)
	if err != nil {
		common.LogFatal("Failed to load user aliases", zap.Error(err))
	}

	noteCatalog, err := catalog.NewLoader(cfg.Catalog).Build(startCtx, nil)
	if err != nil {
		common.LogFatal("Failed to load catalog", zap.Error(err))
	}
	aliasTable := notes.NewAliasTable(userAliases)
	resolver := notes.NewResolver(noteCatalog, aliasTable)

	m := metrics.New()
	m.SetCatalogEntries(noteCatalog.Len())
	m.SetAliases(aliasTable.Len())

	common.LogInfo("原料目錄已載入",
		zap.Int("entries", noteCatalog.Len()),
		zap.Int("builtin_aliases", noteCatalog.AliasCount()),
		zap.Int("user_aliases", aliasTable.Len()),
	)

	// 初始化快取
	cacheManager := cache.NewManager(cfg.Cache)
	defer cacheManager.Close()

	formulaService := formula.NewService(resolver, formula.InsightOptions{
		AcceptanceThreshold: cfg.Insights.AcceptanceThreshold,
	}, cacheManager, m)
	libraryService := library.NewService(store, resolver, cfg.Drafts.AutosaveDelay, formulaService, m)

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		Formula: formulaService,
		Library: libraryService,
		Cache:   cacheManager,
		Metrics: m,
	})
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	// 寫入尚未保存的草稿
	if err := libraryService.Close(ctx); err != nil {
		common.LogError("Failed to flush drafts", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
