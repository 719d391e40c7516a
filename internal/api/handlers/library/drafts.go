package library

import (
	"net/http"

	"parfum-formulator/internal/core/formula"
	"parfum-formulator/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// RegisterDrafts 註冊草稿路由
func (h *Handler) RegisterDrafts(rg *gin.RouterGroup) {
	rg.GET("/:id", h.HandleLoadDraft)
	rg.PUT("/:id", h.HandleSaveDraft)
	rg.DELETE("/:id", h.HandleClearDraft)
}

// HandleLoadDraft 讀取草稿
func (h *Handler) HandleLoadDraft(c *gin.Context) {
	f, err := h.library.LoadDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.WriteErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// HandleSaveDraft 排程保存草稿，回應時不一定已寫入儲存
func (h *Handler) HandleSaveDraft(c *gin.Context) {
	var f formula.Formula
	if err := c.ShouldBindJSON(&f); err != nil {
		common.WriteErrorResponse(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	draft, err := h.library.SaveDraft(c.Request.Context(), c.Param("id"), f)
	if err != nil {
		common.WriteErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusAccepted, draft)
}

// HandleClearDraft 刪除草稿
func (h *Handler) HandleClearDraft(c *gin.Context) {
	if err := h.library.ClearDraft(c.Request.Context(), c.Param("id")); err != nil {
		common.WriteErrorResponse(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
