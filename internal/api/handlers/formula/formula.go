package formula

import (
	"io"
	"net/http"

	coreFormula "parfum-formulator/internal/core/formula"
	"parfum-formulator/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecomputeRequest 單一原料換算：以 field 欄位的 value 為準
type RecomputeRequest struct {
	Material    coreFormula.Material `json:"material"`
	Field       string               `json:"field"`
	Value       *float64             `json:"value"`
	BatchWeight float64              `json:"batchWeight"`
	Density     float64              `json:"density"`
}

// FormulaRequest 包裝整份配方
type FormulaRequest struct {
	Formula coreFormula.Formula `json:"formula"`
}

// TotalsRequest 原料合計
type TotalsRequest struct {
	Materials []coreFormula.Material `json:"materials"`
}

// Handler 配方計算 API
type Handler struct {
	service *coreFormula.Service
}

// NewHandler 創建配方處理器
func NewHandler(service *coreFormula.Service) *Handler {
	return &Handler{service: service}
}

// Register 註冊路由
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/recompute", h.HandleRecompute)
	rg.POST("/sync", h.HandleSync)
	rg.POST("/totals", h.HandleTotals)
	rg.POST("/insights", h.HandleInsights)
	rg.POST("/import", h.HandleImport)
	rg.POST("/dilute", h.HandleDilute)
	rg.GET("/diluents", h.HandleDiluents)
}

// HandleRecompute 以指定欄位重新推導原料的其他數量
func (h *Handler) HandleRecompute(c *gin.Context) {
	var req RecomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorResponse(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	field, err := coreFormula.ParseField(req.Field)
	if err != nil {
		common.WriteErrorResponse(c, common.NewValidationError(err.Error()))
		return
	}

	// sync 不需要 value，其餘欄位未提供時以原料目前的值為準
	var value float64
	if req.Value != nil {
		value = *req.Value
	} else {
		value = currentValue(req.Material, field)
	}

	ctx := coreFormula.Context{Density: req.Density, BatchWeight: req.BatchWeight}
	c.JSON(http.StatusOK, gin.H{"material": h.service.Recompute(req.Material, field, value, ctx)})
}

func currentValue(m coreFormula.Material, field coreFormula.Field) float64 {
	switch field {
	case coreFormula.FieldGrams:
		return m.Grams
	case coreFormula.FieldML:
		return m.ML
	case coreFormula.FieldDrops:
		return m.Drops
	case coreFormula.FieldPercent:
		return m.Percent
	default:
		return 0
	}
}

// HandleSync 批次參數變更後重新同步整份配方
func (h *Handler) HandleSync(c *gin.Context) {
	var req FormulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorResponse(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	synced := h.service.Sync(req.Formula)
	c.JSON(http.StatusOK, gin.H{
		"formula": synced,
		"totals":  h.service.Totals(synced.Materials),
	})
}

// HandleTotals 原料數量合計
func (h *Handler) HandleTotals(c *gin.Context) {
	var req TotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorResponse(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, h.service.Totals(req.Materials))
}

// HandleInsights 計算配方分析
func (h *Handler) HandleInsights(c *gin.Context) {
	var req FormulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorResponse(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	insights, err := h.service.Insights(c.Request.Context(), req.Formula)
	if err != nil {
		common.WriteErrorResponse(c, err)
		return
	}

	common.LogDebug("配方分析完成",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("materials", len(req.Formula.Materials)),
		zap.Float64("balance_score", insights.BalanceScore),
	)
	c.JSON(http.StatusOK, insights)
}

// HandleImport 將任意 JSON 轉為配方
func (h *Handler) HandleImport(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		common.WriteErrorResponse(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	f, err := h.service.Import(body)
	if err != nil {
		common.LogWarn("配方匯入失敗",
			zap.String("request_id", requestid.Get(c)),
			zap.Error(err),
		)
		common.WriteErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"formula": f})
}

// HandleDilute 規劃稀釋劑用量
func (h *Handler) HandleDilute(c *gin.Context) {
	var req coreFormula.DilutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorResponse(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	plan, err := h.service.Dilute(req)
	if err != nil {
		common.WriteErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// HandleDiluents 列出可用的稀釋劑
func (h *Handler) HandleDiluents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"diluents": coreFormula.Diluents(),
		"default":  coreFormula.DefaultDiluent,
	})
}
