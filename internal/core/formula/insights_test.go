package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parfum-formulator/internal/core/notes"
)

func defaultResolver() *notes.Resolver {
	return notes.NewResolver(notes.DefaultCatalog(nil), notes.NewAliasTable(nil))
}

// stubResolver 以固定結果取代目錄查詢
type stubResolver map[string]notes.Resolution

func (s stubResolver) Resolve(raw string) notes.Resolution {
	if res, ok := s[raw]; ok {
		return res
	}
	return notes.Resolution{
		Profile:    &notes.NoteProfile{Name: raw, Families: []string{notes.FamilyNeutral}, Pyramid: []string{notes.LevelHeart}},
		Confidence: 0.2,
		Unmapped:   true,
		Tier:       notes.TierFallback,
	}
}

func levelByName(t *testing.T, ins Insights, level string) LevelBreakdown {
	t.Helper()
	for _, b := range ins.Pyramid {
		if b.Level == level {
			return b
		}
	}
	t.Fatalf("level %s not found", level)
	return LevelBreakdown{}
}

func TestInsightsBalancedFormula(t *testing.T) {
	f := Formula{
		Type:        TypeEDP,
		BatchWeight: 500,
		Density:     1,
		Materials: []Material{
			{Note: "Bergamotto", Grams: 30},
			{Note: "Rosa", Grams: 45},
			{Note: "Patchouli", Grams: 25},
		},
	}

	ins := ComputeInsights(f, defaultResolver(), DefaultInsightOptions())

	assert.Equal(t, 100.0, ins.BalanceScore)
	assert.Equal(t, 10, ins.Rating)
	assert.Equal(t, "Fiorita", ins.DominantFamily)
	assert.InDelta(t, 20, ins.ConcentratePercent, tolerance)
	assert.True(t, ins.ConcentrateCompliant)
	assert.Equal(t, []string{
		"La famiglia Fiorita è dominante: mantienila o integra famiglie complementari.",
	}, ins.Suggestions)

	var sum float64
	for _, b := range ins.Pyramid {
		sum += b.Percentage
	}
	assert.InDelta(t, 100, sum, tolerance)
	assert.Equal(t, []string{notes.LevelTop, notes.LevelHeart, notes.LevelBase}, []string{ins.Pyramid[0].Level, ins.Pyramid[1].Level, ins.Pyramid[2].Level})
}

func TestInsightsSingleTopMaterial(t *testing.T) {
	f := Formula{
		Type:        TypeEDP,
		BatchWeight: 100,
		Density:     1,
		Materials:   []Material{{Note: "Bergamotto FCF", Grams: 5}},
	}

	ins := ComputeInsights(f, defaultResolver(), DefaultInsightOptions())

	top := levelByName(t, ins, notes.LevelTop)
	assert.Equal(t, 100.0, top.Percentage)
	assert.Equal(t, 0.0, top.Score)
	assert.Equal(t, 30.0, levelByName(t, ins, notes.LevelHeart).Score)
	assert.Equal(t, 60.0, levelByName(t, ins, notes.LevelBase).Score)
	assert.InDelta(t, 30, ins.BalanceScore, tolerance)
	assert.Less(t, ins.BalanceScore, 100.0)
	assert.Equal(t, 3, ins.Rating)
	assert.Equal(t, "Agrumata", ins.DominantFamily)

	assert.Equal(t, []string{
		"Riduci le note di testa verso ~35%.",
		"Aumenta le note di cuore fino almeno a ~35%.",
		"Aumenta le note di fondo fino almeno a ~20%.",
		"La famiglia Agrumata è dominante: mantienila o integra famiglie complementari.",
		"Il concentrato è basso per la tipologia: porta il totale almeno al 15%.",
	}, ins.Suggestions)
}

func TestLevelScore(t *testing.T) {
	target := Range{Min: 20, Max: 35}

	assert.Equal(t, 100.0, LevelScore(20, target))
	assert.Equal(t, 100.0, LevelScore(35, target))
	assert.Equal(t, 90.0, LevelScore(15, target))
	assert.Equal(t, 80.0, LevelScore(45, target))
	assert.Equal(t, 0.0, LevelScore(100, target))
}

func TestInsightsEmptyFormula(t *testing.T) {
	ins := ComputeInsights(Formula{BatchWeight: 100, Density: 1}, defaultResolver(), DefaultInsightOptions())

	assert.Zero(t, ins.TotalWeight)
	assert.Zero(t, ins.BalanceScore)
	assert.Equal(t, 1, ins.Rating)
	assert.Empty(t, ins.DominantFamily)
	assert.Equal(t, []string{SuggestAddMaterials}, ins.Suggestions)
	assert.Len(t, ins.Pyramid, 3)
}

func TestInsightsZeroBatchWeight(t *testing.T) {
	f := Formula{
		BatchWeight: 0,
		Density:     1,
		Materials:   []Material{{Note: "Rosa", Grams: 10}},
	}

	ins := ComputeInsights(f, defaultResolver(), DefaultInsightOptions())
	assert.Zero(t, ins.ConcentratePercent)
	assert.Equal(t, 10.0, ins.TotalWeight)
}

func TestInsightsFallbackDoesNotSkewFamilies(t *testing.T) {
	f := Formula{
		BatchWeight: 100,
		Density:     1,
		Materials: []Material{
			{Note: "Rosa", Grams: 10},
			{Note: "Zzyzx Accord", Grams: 90},
			{Note: "", Grams: 50},
			{Note: "Iris", Grams: 0},
		},
	}

	ins := ComputeInsights(f, defaultResolver(), DefaultInsightOptions())

	assert.Equal(t, "Fiorita", ins.DominantFamily)
	assert.Equal(t, []FamilyWeight{{Family: "Fiorita", Weight: 10}}, ins.Families)
	assert.Equal(t, 150.0, ins.TotalWeight)
	assert.Equal(t, 100.0, ins.ClassifiedWeight)
	require.Len(t, ins.Materials, 2)
	assert.True(t, ins.Materials[1].Unmapped)
	assert.True(t, ins.Materials[1].Classified)
	assert.Empty(t, ins.Materials[1].Canonical)
	assert.Equal(t, 100.0, levelByName(t, ins, notes.LevelHeart).Percentage)
}

func TestInsightsOnlyUnresolvedNotes(t *testing.T) {
	f := Formula{
		BatchWeight: 100,
		Density:     1,
		Materials:   []Material{{Note: "Qwxz", Grams: 10}, {Note: "Vbnm", Grams: 5}},
	}

	ins := ComputeInsights(f, defaultResolver(), DefaultInsightOptions())

	assert.Empty(t, ins.DominantFamily)
	assert.Empty(t, ins.Families)
	assert.Contains(t, ins.Suggestions, SuggestPickFromList)
	assert.Contains(t, ins.Suggestions, SuggestSecondFamily)
}

func TestInsightsFuzzyGate(t *testing.T) {
	resolver := stubResolver{
		"rosa": {
			Profile:    &notes.NoteProfile{Name: "Rosa", Families: []string{"Fiorita"}, Pyramid: []string{notes.LevelHeart}},
			Confidence: 1,
			Tier:       notes.TierExact,
		},
		"rossa": {
			Profile:    &notes.NoteProfile{Name: "Rosa", Families: []string{"Fiorita"}, Pyramid: []string{notes.LevelHeart}},
			Confidence: 0.5,
			Tier:       notes.TierFuzzy,
		},
		"ambra?": {
			Profile:    &notes.NoteProfile{Name: "Ambra", Families: []string{"Ambrata"}, Pyramid: []string{notes.LevelBase}},
			Confidence: 0.8,
			Tier:       notes.TierFuzzy,
		},
	}
	f := Formula{
		BatchWeight: 100,
		Density:     1,
		Materials: []Material{
			{Note: "rosa", Grams: 10},
			{Note: "rossa", Grams: 20},
			{Note: "ambra?", Grams: 10},
		},
	}

	ins := ComputeInsights(f, resolver, DefaultInsightOptions())
	assert.Equal(t, 40.0, ins.TotalWeight)
	assert.Equal(t, 20.0, ins.ClassifiedWeight)
	assert.InDelta(t, 40, ins.ConcentratePercent, tolerance)
	assert.False(t, ins.Materials[1].Classified)
	assert.Equal(t, 50.0, levelByName(t, ins, notes.LevelBase).Percentage)

	strict := ComputeInsights(f, resolver, InsightOptions{AcceptanceThreshold: 0.9})
	assert.Equal(t, 10.0, strict.ClassifiedWeight)
	assert.Equal(t, 100.0, levelByName(t, strict, notes.LevelHeart).Percentage)
}

func TestInsightsMultiLevelAndExtraLevels(t *testing.T) {
	resolver := stubResolver{
		"lavanda": {
			Profile:    &notes.NoteProfile{Name: "Lavanda EO", Families: []string{"Aromatica"}, Pyramid: []string{notes.LevelTop, notes.LevelHeart}},
			Confidence: 1,
			Tier:       notes.TierExact,
		},
		"alone": {
			Profile:    &notes.NoteProfile{Name: "Alone", Families: []string{"Custom"}, Pyramid: []string{"Scia"}},
			Confidence: 1,
			Tier:       notes.TierExact,
		},
	}
	f := Formula{
		BatchWeight: 100,
		Density:     1,
		Materials:   []Material{{Note: "lavanda", Grams: 8}, {Note: "alone", Grams: 2}},
	}

	ins := ComputeInsights(f, resolver, DefaultInsightOptions())

	require.Len(t, ins.Pyramid, 4)
	assert.Equal(t, "Scia", ins.Pyramid[3].Level)
	assert.Nil(t, ins.Pyramid[3].Target)
	assert.Equal(t, 80.0, levelByName(t, ins, notes.LevelTop).Percentage)
	assert.Equal(t, 80.0, levelByName(t, ins, notes.LevelHeart).Percentage)
	assert.Equal(t, []FamilyWeight{{Family: "Aromatica", Weight: 8}}, ins.Families)
}

func TestInsightsDominantFamilyTieKeepsFirstSeen(t *testing.T) {
	f := Formula{
		BatchWeight: 100,
		Density:     1,
		Materials: []Material{
			{Note: "Limone", Grams: 10},
			{Note: "Rosa", Grams: 10},
		},
	}

	ins := ComputeInsights(f, defaultResolver(), DefaultInsightOptions())
	assert.Equal(t, "Agrumata", ins.DominantFamily)
}

func TestInsightsAreDeterministic(t *testing.T) {
	f := Formula{
		Type:        TypeEDT,
		BatchWeight: 80,
		Density:     0.9,
		Materials: []Material{
			{Note: "Bergamotto", Grams: 3},
			{Note: "Gelsomino", Grams: 2},
			{Note: "Vetiver", Grams: 4},
			{Note: "Mio accordo", Grams: 1},
		},
	}
	r := defaultResolver()

	assert.Equal(t, ComputeInsights(f, r, DefaultInsightOptions()), ComputeInsights(f, r, DefaultInsightOptions()))
}
