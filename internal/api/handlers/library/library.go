package library

import (
	"fmt"
	"net/http"

	"parfum-formulator/internal/core/formula"
	coreLibrary "parfum-formulator/internal/core/library"
	"parfum-formulator/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListResponse 配方列表
type ListResponse struct {
	Formulas []formula.Formula `json:"formulas"`
	Count    int               `json:"count"`
}

// Handler 配方庫 API
type Handler struct {
	library *coreLibrary.Service
	formula *formula.Service
}

// NewHandler 創建配方庫處理器
func NewHandler(library *coreLibrary.Service, formulaService *formula.Service) *Handler {
	return &Handler{
		library: library,
		formula: formulaService,
	}
}

// Register 註冊配方庫路由；writes 只套用在會新增配方的請求
func (h *Handler) Register(rg *gin.RouterGroup, writes ...gin.HandlerFunc) {
	rg.GET("", h.HandleList)
	rg.POST("", chain(writes, h.HandleSave)...)
	rg.GET("/:id", h.HandleGet)
	rg.DELETE("/:id", h.HandleDelete)
	rg.POST("/:id/duplicate", chain(writes, h.HandleDuplicate)...)
	rg.GET("/:id/export", h.HandleExport)
}

func chain(middlewares []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(middlewares)+1)
	out = append(out, middlewares...)
	return append(out, handler)
}

// HandleList 依更新時間列出配方
func (h *Handler) HandleList(c *gin.Context) {
	formulas, err := h.library.List(c.Request.Context())
	if err != nil {
		common.WriteErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Formulas: formulas, Count: len(formulas)})
}

// HandleSave 保存配方
func (h *Handler) HandleSave(c *gin.Context) {
	var f formula.Formula
	if err := c.ShouldBindJSON(&f); err != nil {
		common.WriteErrorResponse(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	saved, err := h.library.Save(c.Request.Context(), f)
	if err != nil {
		common.WriteErrorResponse(c, err)
		return
	}

	common.LogInfo("配方保存請求完成",
		zap.String("request_id", requestid.Get(c)),
		zap.String("formula_id", saved.ID),
	)
	c.JSON(http.StatusOK, saved)
}

// HandleGet 讀取單一配方
func (h *Handler) HandleGet(c *gin.Context) {
	f, err := h.library.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.WriteErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// HandleDelete 刪除配方
func (h *Handler) HandleDelete(c *gin.Context) {
	if err := h.library.Delete(c.Request.Context(), c.Param("id")); err != nil {
		common.WriteErrorResponse(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleDuplicate 複製配方
func (h *Handler) HandleDuplicate(c *gin.Context) {
	dup, err := h.library.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.WriteErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, dup)
}

// HandleExport 以附件下載配方 JSON
func (h *Handler) HandleExport(c *gin.Context) {
	f, err := h.library.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.WriteErrorResponse(c, err)
		return
	}

	data, filename, err := h.formula.Export(f)
	if err != nil {
		common.WriteErrorResponse(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}
