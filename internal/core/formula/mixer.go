package formula

import (
	"fmt"
	"math"
)

// Diluent 可用於補足批次的稀釋劑
type Diluent struct {
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	Group   string  `json:"group"`
	Density float64 `json:"density"`
	Neutral bool    `json:"neutral"`
}

// DefaultDiluent 未指定稀釋劑時使用 96° 乙醇
const DefaultDiluent = "ethanol_96"

var diluents = []Diluent{
	{Key: "ethanol_96", Name: "Ethanol 96°", Group: "Solvente", Density: 0.809, Neutral: true},
	{Key: "dpg", Name: "DPG (Dipropylene Glycol)", Group: "Diluente", Density: 1.02, Neutral: true},
	{Key: "tec", Name: "TEC (Trietil Citrato)", Group: "Diluente", Density: 1.14, Neutral: true},
	{Key: "ipm", Name: "IPM (Isopropyl Myristate)", Group: "Diluente", Density: 0.85, Neutral: true},
	{Key: "decanol", Name: "Decanolo", Group: "Modificatore", Density: 0.83},
}

// Diluents 回傳可用稀釋劑清單
func Diluents() []Diluent {
	return append([]Diluent(nil), diluents...)
}

func findDiluent(key string) (Diluent, bool) {
	for _, d := range diluents {
		if d.Key == key {
			return d, true
		}
	}
	return Diluent{}, false
}

// DiluentShare 使用者指定的稀釋劑比例
type DiluentShare struct {
	Key     string  `json:"key"`
	Percent float64 `json:"percent"`
}

// DilutionRequest 稀釋規劃輸入，容量單位皆為毫升
type DilutionRequest struct {
	BatchML       float64        `json:"batchMl"`
	ConcentrateML float64        `json:"concentrateMl"`
	Type          Type           `json:"type"`
	Diluents      []DiluentShare `json:"diluents"`
}

// DiluentPortion 單一稀釋劑的用量
type DiluentPortion struct {
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
	ML      float64 `json:"ml"`
	Grams   float64 `json:"grams"`
}

// DilutionPlan 稀釋規劃結果
type DilutionPlan struct {
	BatchML            float64          `json:"batchMl"`
	ConcentrateML      float64          `json:"concentrateMl"`
	ConcentratePercent float64          `json:"concentratePercent"`
	RemainingML        float64          `json:"remainingMl"`
	Range              Range            `json:"range"`
	Compliant          bool             `json:"compliant"`
	Portions           []DiluentPortion `json:"portions"`
}

// PlanDilution 將剩餘容量依正規化後的比例分配給稀釋劑。
// 合規區間沿用配方的 Quota 表，與分析結果使用同一組濃度範圍。
// 所有比例皆為 0 時平均分配。
func PlanDilution(req DilutionRequest) (DilutionPlan, error) {
	batch := nonNegative(req.BatchML)
	conc := nonNegative(req.ConcentrateML)

	plan := DilutionPlan{
		BatchML:       batch,
		ConcentrateML: conc,
		RemainingML:   math.Max(0, batch-conc),
		Range:         Quota(req.Type),
		Portions:      []DiluentPortion{},
	}
	if batch > 0 {
		plan.ConcentratePercent = conc / batch * 100
	}
	plan.Compliant = plan.Range.Contains(plan.ConcentratePercent)

	shares := append([]DiluentShare(nil), req.Diluents...)
	if len(shares) == 0 {
		shares = []DiluentShare{{Key: DefaultDiluent, Percent: 100}}
	}

	var sum float64
	for i, s := range shares {
		if _, ok := findDiluent(s.Key); !ok {
			return DilutionPlan{}, fmt.Errorf("unknown diluent %q", s.Key)
		}
		shares[i].Percent = ClampPercent(s.Percent)
		sum += shares[i].Percent
	}

	for _, s := range shares {
		d, _ := findDiluent(s.Key)
		pct := 100 / float64(len(shares))
		if sum > 0 {
			pct = s.Percent / sum * 100
		}
		ml := plan.RemainingML * pct / 100
		plan.Portions = append(plan.Portions, DiluentPortion{
			Key:     d.Key,
			Name:    d.Name,
			Percent: pct,
			ML:      ml,
			Grams:   ml * d.Density,
		})
	}
	return plan, nil
}
