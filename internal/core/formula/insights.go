package formula

import (
	"math"
	"sort"
	"strings"

	"parfum-formulator/internal/core/notes"
)

// DefaultAcceptanceThreshold 模糊命中低於此信心值時不參與分類
const DefaultAcceptanceThreshold = 0.72

// levelTargets 各金字塔層級的建議比例
var levelTargets = map[string]Range{
	notes.LevelTop:   {Min: 20, Max: 35},
	notes.LevelHeart: {Min: 35, Max: 50},
	notes.LevelBase:  {Min: 20, Max: 35},
}

// LevelTarget 回傳層級的目標區間
func LevelTarget(level string) (Range, bool) {
	r, ok := levelTargets[level]
	return r, ok
}

// Resolver 名稱解析介面，由 notes.Resolver 實作
type Resolver interface {
	Resolve(rawName string) notes.Resolution
}

// InsightOptions 分析參數
type InsightOptions struct {
	AcceptanceThreshold float64
}

// DefaultInsightOptions 預設分析參數
func DefaultInsightOptions() InsightOptions {
	return InsightOptions{AcceptanceThreshold: DefaultAcceptanceThreshold}
}

// LevelMaterial 金字塔層級內的一項原料
type LevelMaterial struct {
	Note    string  `json:"note"`
	Grams   float64 `json:"grams"`
	Percent float64 `json:"percent"`
	Tag     string  `json:"tag"`
}

// LevelBreakdown 單一層級的統計
type LevelBreakdown struct {
	Level      string          `json:"level"`
	Weight     float64         `json:"weight"`
	Percentage float64         `json:"percentage"`
	Target     *Range          `json:"target,omitempty"`
	Score      float64         `json:"score"`
	Materials  []LevelMaterial `json:"materials"`
}

// FamilyWeight 香族累積重量
type FamilyWeight struct {
	Family string  `json:"family"`
	Weight float64 `json:"weight"`
}

// MaterialResolution 單一原料的解析狀態
type MaterialResolution struct {
	Note       string     `json:"note"`
	Canonical  string     `json:"canonical,omitempty"`
	Confidence float64    `json:"confidence"`
	Unmapped   bool       `json:"unmapped"`
	Tier       notes.Tier `json:"tier"`
	Classified bool       `json:"classified"`
}

// Insights 配方分析結果
type Insights struct {
	Pyramid              []LevelBreakdown     `json:"pyramid"`
	DominantFamily       string               `json:"dominantFamily,omitempty"`
	Families             []FamilyWeight       `json:"families"`
	BalanceScore         float64              `json:"balanceScore"`
	Rating               int                  `json:"rating"`
	TotalWeight          float64              `json:"totalWeight"`
	ClassifiedWeight     float64              `json:"classifiedWeight"`
	ConcentratePercent   float64              `json:"concentratePercent"`
	Quota                Range                `json:"quota"`
	ConcentrateCompliant bool                 `json:"concentrateCompliant"`
	Materials            []MaterialResolution `json:"materials"`
	Suggestions          []string             `json:"suggestions"`
}

// LevelScore 比例落在目標區間內得 100，超出時每個百分點扣 2 分，最低 0
func LevelScore(percentage float64, target Range) float64 {
	if target.Contains(percentage) {
		return 100
	}
	delta := target.Min - percentage
	if percentage > target.Max {
		delta = percentage - target.Max
	}
	return math.Max(0, 100-2*delta)
}

// levelAccumulator 依首次出現順序累積層級
type levelAccumulator struct {
	order  []string
	weight map[string]float64
	items  map[string][]LevelMaterial
}

func newLevelAccumulator() *levelAccumulator {
	acc := &levelAccumulator{
		weight: make(map[string]float64),
		items:  make(map[string][]LevelMaterial),
	}
	for _, level := range notes.DefaultLevels {
		acc.ensure(level)
	}
	return acc
}

func (a *levelAccumulator) ensure(level string) {
	if _, ok := a.weight[level]; !ok {
		a.order = append(a.order, level)
		a.weight[level] = 0
	}
}

func (a *levelAccumulator) add(level string, item LevelMaterial) {
	a.ensure(level)
	a.weight[level] += item.Grams
	a.items[level] = append(a.items[level], item)
}

// ComputeInsights 彙整配方的金字塔分佈、主要香族、平衡分數與建議。
// 呼叫之間不保留任何狀態，相同輸入必得相同輸出。
func ComputeInsights(f Formula, resolver Resolver, opts InsightOptions) Insights {
	ctx := f.Context().Normalized()
	levels := newLevelAccumulator()

	var familyOrder []string
	familyWeight := make(map[string]float64)

	ins := Insights{
		Quota:     Quota(f.Type),
		Families:  []FamilyWeight{},
		Materials: []MaterialResolution{},
	}

	for _, m := range f.Materials {
		grams := nonNegative(m.Grams)
		ins.TotalWeight += grams

		if strings.TrimSpace(m.Note) == "" || grams <= 0 {
			continue
		}

		res := resolver.Resolve(m.Note)
		status := MaterialResolution{
			Note:       m.Note,
			Confidence: res.Confidence,
			Unmapped:   res.Unmapped,
			Tier:       res.Tier,
		}
		if res.Profile != nil && !res.Unmapped {
			status.Canonical = res.Profile.Name
		}

		if res.Profile == nil || (res.Tier == notes.TierFuzzy && res.Confidence < opts.AcceptanceThreshold) {
			ins.Materials = append(ins.Materials, status)
			continue
		}
		status.Classified = true
		ins.Materials = append(ins.Materials, status)
		ins.ClassifiedWeight += grams

		tag := "Custom"
		if len(res.Profile.Families) > 0 {
			tag = res.Profile.Families[0]
		}
		item := LevelMaterial{Note: m.Note, Grams: grams, Percent: finite(m.Percent), Tag: tag}

		pyramid := res.Profile.Pyramid
		if len(pyramid) == 0 {
			pyramid = []string{notes.LevelHeart}
		}
		for _, level := range pyramid {
			levels.add(notes.CanonicalLevel(level), item)
		}

		for _, family := range res.Profile.Families {
			if notes.IsNeutralFamily(family) {
				continue
			}
			if _, seen := familyWeight[family]; !seen {
				familyOrder = append(familyOrder, family)
			}
			familyWeight[family] += grams
		}
	}

	var scoreSum float64
	var scored int
	for _, level := range levels.order {
		b := LevelBreakdown{
			Level:     level,
			Weight:    levels.weight[level],
			Materials: levels.items[level],
		}
		if b.Materials == nil {
			b.Materials = []LevelMaterial{}
		}
		sort.SliceStable(b.Materials, func(i, j int) bool {
			return b.Materials[i].Grams > b.Materials[j].Grams
		})
		if ins.ClassifiedWeight > 0 {
			b.Percentage = b.Weight / ins.ClassifiedWeight * 100
		}
		if target, ok := LevelTarget(level); ok {
			t := target
			b.Target = &t
			b.Score = LevelScore(b.Percentage, target)
			scoreSum += b.Score
			scored++
		}
		ins.Pyramid = append(ins.Pyramid, b)
	}
	if ins.ClassifiedWeight > 0 && scored > 0 {
		ins.BalanceScore = scoreSum / float64(scored)
	}
	ins.Rating = rating(ins.BalanceScore, ins.TotalWeight)

	for _, family := range familyOrder {
		ins.Families = append(ins.Families, FamilyWeight{Family: family, Weight: familyWeight[family]})
	}
	sort.SliceStable(ins.Families, func(i, j int) bool {
		return ins.Families[i].Weight > ins.Families[j].Weight
	})
	if len(ins.Families) > 0 {
		ins.DominantFamily = ins.Families[0].Family
	}

	if ctx.BatchWeight > 0 {
		ins.ConcentratePercent = ins.TotalWeight / ctx.BatchWeight * 100
	}
	ins.ConcentrateCompliant = ins.Quota.Contains(ins.ConcentratePercent)

	ins.Suggestions = BuildSuggestions(ins)
	return ins
}

// rating 將 0~100 的分數換算為 1~10，沒有任何重量時固定為 1
func rating(score, totalWeight float64) int {
	if totalWeight <= 0 {
		return 1
	}
	r := int(math.Round(score / 100 * 10))
	if r < 1 {
		return 1
	}
	if r > 10 {
		return 10
	}
	return r
}
