package formula

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"parfum-formulator/internal/core/cache"
	"parfum-formulator/internal/core/notes"
	"parfum-formulator/internal/infrastructure/metrics"
	"parfum-formulator/internal/pkg/common"

	"go.uber.org/zap"
)

const insightsNamespace = "insights"

// Service 配方計算服務
type Service struct {
	resolver     *notes.Resolver
	options      InsightOptions
	cacheManager *cache.CacheManager
	metrics      *metrics.Metrics
}

// NewService 創建配方服務；cacheManager 與 m 可為 nil
func NewService(resolver *notes.Resolver, opts InsightOptions, cacheManager *cache.CacheManager, m *metrics.Metrics) *Service {
	return &Service{
		resolver:     resolver,
		options:      opts,
		cacheManager: cacheManager,
		metrics:      m,
	}
}

// Resolver 回傳名稱解析器
func (s *Service) Resolver() *notes.Resolver {
	return s.resolver
}

// Resolve 解析單一原料名稱
func (s *Service) Resolve(rawName string) notes.Resolution {
	res := s.resolver.Resolve(rawName)
	s.metrics.ObserveResolution(string(res.Tier))
	return res
}

// ResolveMany 依序解析多個名稱
func (s *Service) ResolveMany(names []string) []notes.Resolution {
	out := make([]notes.Resolution, 0, len(names))
	for _, name := range names {
		out = append(out, s.Resolve(name))
	}
	return out
}

// Recompute 單一原料的換算
func (s *Service) Recompute(m Material, field Field, value float64, ctx Context) Material {
	return Recompute(m, field, value, ctx)
}

// Sync 批次參數變更後重新同步整份配方
func (s *Service) Sync(f Formula) Formula {
	return RecomputeFormula(f)
}

// Totals 原料數量合計
func (s *Service) Totals(materials []Material) Totals {
	return ComputeTotals(materials)
}

// Insights 計算配方分析，結果依內容哈希快取
func (s *Service) Insights(ctx context.Context, f Formula) (Insights, error) {
	key, err := s.insightsKey(f)
	if err != nil {
		return Insights{}, fmt.Errorf("hash formula: %w", err)
	}

	if cached, err := s.cacheManager.Get(ctx, insightsNamespace, key); err == nil {
		var ins Insights
		if err := common.ParseJSON(cached, &ins); err == nil {
			s.metrics.ObserveInsights(true)
			return ins, nil
		}
		common.LogWarn("快取內容無法解析，重新計算", zap.String("key", key))
	}

	ins := ComputeInsights(f, s, s.options)
	s.metrics.ObserveInsights(false)

	if data, err := json.Marshal(ins); err == nil {
		if err := s.cacheManager.Set(ctx, insightsNamespace, key, string(data)); err != nil && !errors.Is(err, cache.ErrFull) {
			common.LogWarn("Failed to cache insights", zap.Error(err))
		}
	}
	return ins, nil
}

// InvalidateInsights 清除所有快取的分析結果，回傳清除筆數
func (s *Service) InvalidateInsights() int {
	n := s.cacheManager.Invalidate(insightsNamespace)
	if n > 0 {
		common.LogDebug("分析快取已清除", zap.Int("entries", n))
	}
	return n
}

// insightsKey 只取影響分析結果的欄位，再加上別名表版本與門檻
func (s *Service) insightsKey(f Formula) (string, error) {
	type row struct {
		Note    string  `json:"n"`
		Grams   float64 `json:"g"`
		Percent float64 `json:"p"`
	}
	snapshot := struct {
		Type        Type    `json:"t"`
		BatchWeight float64 `json:"b"`
		Density     float64 `json:"d"`
		Rows        []row   `json:"r"`
	}{
		Type:        ParseType(string(f.Type)),
		BatchWeight: finite(f.BatchWeight),
		Density:     finite(f.Density),
	}
	for _, m := range f.Materials {
		snapshot.Rows = append(snapshot.Rows, row{Note: m.Note, Grams: finite(m.Grams), Percent: finite(m.Percent)})
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	return cache.HashKey(
		string(data),
		fmt.Sprint(s.resolver.Aliases().Len()),
		fmt.Sprint(s.options.AcceptanceThreshold),
	), nil
}

// Import 匯入任意 JSON 配方
func (s *Service) Import(data []byte) (Formula, error) {
	f, err := ImportFormula(data, s)
	if err != nil {
		return Formula{}, common.ErrInvalidFormulaJSON.Wrap(err)
	}
	return f, nil
}

// Export 輸出配方 JSON 與建議檔名
func (s *Service) Export(f Formula) ([]byte, string, error) {
	data, err := ExportFormula(f)
	if err != nil {
		return nil, "", fmt.Errorf("export formula: %w", err)
	}
	return data, SafeFileName(f.Name, "json"), nil
}

// Dilute 規劃稀釋劑用量
func (s *Service) Dilute(req DilutionRequest) (DilutionPlan, error) {
	plan, err := PlanDilution(req)
	if err != nil {
		return DilutionPlan{}, common.NewValidationError(err.Error())
	}
	return plan, nil
}
