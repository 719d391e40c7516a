package formula

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parfum-formulator/internal/core/cache"
	"parfum-formulator/internal/infrastructure/config"
	"parfum-formulator/internal/infrastructure/metrics"
	"parfum-formulator/internal/pkg/common"
)

func newTestService(t *testing.T) (*Service, *cache.CacheManager) {
	t.Helper()
	cm := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 16, TTL: time.Minute})
	t.Cleanup(func() { _ = cm.Close() })
	return NewService(defaultResolver(), DefaultInsightOptions(), cm, metrics.New()), cm
}

func TestServiceInsightsAreCached(t *testing.T) {
	ctx := context.Background()
	svc, cm := newTestService(t)
	f := Formula{BatchWeight: 100, Density: 1, Materials: []Material{{Note: "Rosa", Grams: 10}}}

	first, err := svc.Insights(ctx, f)
	require.NoError(t, err)
	second, err := svc.Insights(ctx, f)
	require.NoError(t, err)

	assert.Equal(t, first.Suggestions, second.Suggestions)
	assert.Equal(t, first.BalanceScore, second.BalanceScore)
	assert.Equal(t, int64(1), cm.GetStats().Hits)

	// 名稱以外的識別欄位不影響快取
	f.ID = "formula-x"
	f.Name = "Altro nome"
	_, err = svc.Insights(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cm.GetStats().Hits)

	// 新增別名後不可沿用舊結果
	_, added := svc.Resolver().Aliases().Add("rosa centifolia", "rosa")
	require.True(t, added)
	_, err = svc.Insights(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cm.GetStats().Hits)
}

func TestServiceInvalidateInsights(t *testing.T) {
	ctx := context.Background()
	svc, cm := newTestService(t)
	f := Formula{BatchWeight: 100, Density: 1, Materials: []Material{{Note: "Rosa", Grams: 10}}}

	_, err := svc.Insights(ctx, f)
	require.NoError(t, err)
	require.Equal(t, 1, cm.GetStats().Size)

	assert.Equal(t, 1, svc.InvalidateInsights())
	assert.Equal(t, 0, cm.GetStats().Size)

	_, err = svc.Insights(ctx, f)
	require.NoError(t, err)
	stats := cm.GetStats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)

	// 沒有快取時不做任何事
	bare := NewService(defaultResolver(), DefaultInsightOptions(), nil, nil)
	assert.Equal(t, 0, bare.InvalidateInsights())
}

func TestServiceWithoutCache(t *testing.T) {
	svc := NewService(defaultResolver(), DefaultInsightOptions(), nil, nil)

	ins, err := svc.Insights(context.Background(), Formula{BatchWeight: 100, Density: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, ins.Rating)

	res := svc.ResolveMany([]string{"Rosa", "", "bergamot"})
	require.Len(t, res, 3)
	assert.Equal(t, 1.0, res[0].Confidence)
	assert.True(t, res[1].Unmapped)
	assert.Equal(t, 0.8, res[2].Confidence)
}

func TestServiceImportErrors(t *testing.T) {
	svc := NewService(defaultResolver(), DefaultInsightOptions(), nil, nil)

	_, err := svc.Import([]byte(`[]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidFormulaJSON))
	assert.True(t, errors.Is(err, ErrNotObject))
}

func TestServiceExportAndDilute(t *testing.T) {
	svc := NewService(defaultResolver(), DefaultInsightOptions(), nil, nil)

	data, name, err := svc.Export(Formula{Name: "Prova Uno"})
	require.NoError(t, err)
	assert.Equal(t, "prova-uno.json", name)
	assert.Contains(t, string(data), `"materials": []`)

	_, err = svc.Dilute(DilutionRequest{BatchML: 10, Diluents: []DiluentShare{{Key: "acqua"}}})
	assert.True(t, common.IsValidationError(err))
}
