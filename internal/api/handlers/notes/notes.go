package notes

import (
	"net/http"
	"strconv"

	"parfum-formulator/internal/core/formula"
	"parfum-formulator/internal/core/library"
	coreNotes "parfum-formulator/internal/core/notes"
	"parfum-formulator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResolveRequest 解析單一名稱
type ResolveRequest struct {
	Name string `json:"name"`
}

// BatchResolveRequest 批次解析，最多 500 個名稱
type BatchResolveRequest struct {
	Names []string `json:"names" binding:"required,max=500"`
}

// BatchResolveResponse 批次解析結果，順序與輸入相同
type BatchResolveResponse struct {
	Results []coreNotes.Resolution `json:"results"`
}

// CatalogResponse 目錄瀏覽結果
type CatalogResponse struct {
	Total   int               `json:"total"`
	Groups  []string          `json:"groups"`
	Matches []coreNotes.Match `json:"matches"`
}

// AliasRequest 新增使用者別名
type AliasRequest struct {
	Alias     string `json:"alias" binding:"required"`
	Canonical string `json:"canonical" binding:"required"`
}

// AliasResponse 新增別名的結果
type AliasResponse struct {
	Alias   coreNotes.Alias `json:"alias"`
	Created bool            `json:"created"`
}

// Handler 原料名稱相關 API
type Handler struct {
	formulaService *formula.Service
	libraryService *library.Service
}

// NewHandler 創建原料處理器
func NewHandler(formulaService *formula.Service, libraryService *library.Service) *Handler {
	return &Handler{
		formulaService: formulaService,
		libraryService: libraryService,
	}
}

// Register 註冊路由
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/resolve", h.HandleResolve)
	rg.POST("/resolve/batch", h.HandleResolveBatch)
	rg.GET("/catalog", h.HandleCatalog)
	rg.GET("/aliases", h.HandleListAliases)
	rg.POST("/aliases", h.HandleAddAlias)
}

// HandleResolve 解析單一原料名稱
func (h *Handler) HandleResolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorResponse(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, h.formulaService.Resolve(req.Name))
}

// HandleResolveBatch 依序解析多個名稱
func (h *Handler) HandleResolveBatch(c *gin.Context) {
	var req BatchResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorResponse(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, BatchResolveResponse{Results: h.formulaService.ResolveMany(req.Names)})
}

// HandleCatalog 模糊瀏覽目錄
func (h *Handler) HandleCatalog(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			common.WriteErrorResponse(c, common.NewValidationError("limit 必須為非負整數"))
			return
		}
		limit = n
	}

	catalog := h.formulaService.Resolver().Catalog()
	matches := catalog.Browse(c.Query("q"), c.Query("group"), limit)

	c.JSON(http.StatusOK, CatalogResponse{
		Total:   catalog.Len(),
		Groups:  catalog.Groups(),
		Matches: matches,
	})
}

// HandleListAliases 列出使用者別名
func (h *Handler) HandleListAliases(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"aliases": h.libraryService.Aliases()})
}

// HandleAddAlias 新增使用者別名，重複新增回傳既有內容
func (h *Handler) HandleAddAlias(c *gin.Context) {
	var req AliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorResponse(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	alias, created, err := h.libraryService.AddAlias(c.Request.Context(), req.Alias, req.Canonical)
	if err != nil {
		common.LogWarn("新增別名失敗",
			zap.String("alias", req.Alias),
			zap.String("canonical", req.Canonical),
			zap.Error(err),
		)
		common.WriteErrorResponse(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, AliasResponse{Alias: alias, Created: created})
}
