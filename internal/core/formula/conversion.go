package formula

import (
	"fmt"
	"math"
)

// Field 觸發換算的欄位
type Field string

const (
	FieldGrams   Field = "grams"
	FieldML      Field = "ml"
	FieldDrops   Field = "drops"
	FieldPercent Field = "percent"
	FieldSync    Field = "sync"
)

// ParseField 解析欄位名稱
func ParseField(raw string) (Field, error) {
	switch f := Field(raw); f {
	case FieldGrams, FieldML, FieldDrops, FieldPercent, FieldSync:
		return f, nil
	case "":
		return FieldSync, nil
	default:
		return "", fmt.Errorf("unknown field %q", raw)
	}
}

// Context 批次密度與總重
type Context struct {
	Density     float64 `json:"density"`
	BatchWeight float64 `json:"batchWeight"`
}

// Normalized 密度不大於 0 時視為 1，總重不可為負
func (c Context) Normalized() Context {
	density := finite(c.Density)
	if density <= 0 {
		density = 1
	}
	return Context{Density: density, BatchWeight: nonNegative(c.BatchWeight)}
}

// Recompute 以 field 為準重新推導其他三個數量。
// 非有限值一律視為 0，負數視為 0；稀釋度只做範圍限制，不參與換算。
func Recompute(m Material, field Field, value float64, ctx Context) Material {
	ctx = ctx.Normalized()
	out := m
	out.Dilution = ClampPercent(m.Dilution)
	value = nonNegative(value)

	switch field {
	case FieldGrams:
		out.Grams = value
	case FieldML:
		out.Grams = value * ctx.Density
		out.ML = value
		out.Drops = value * DropsPerML
		out.Percent = percentOf(out.Grams, ctx.BatchWeight)
		return out
	case FieldDrops:
		out.Drops = value
		out.ML = value / DropsPerML
		out.Grams = out.ML * ctx.Density
		out.Percent = percentOf(out.Grams, ctx.BatchWeight)
		return out
	case FieldPercent:
		out.Percent = finite(value)
		out.Grams = value / 100 * ctx.BatchWeight
		out.ML = out.Grams / ctx.Density
		out.Drops = out.ML * DropsPerML
		return out
	default:
		out.Grams = nonNegative(m.Grams)
	}

	out.ML = out.Grams / ctx.Density
	out.Drops = out.ML * DropsPerML
	out.Percent = percentOf(out.Grams, ctx.BatchWeight)
	return out
}

// RecomputeFormula 批次參數變更後，以克數為準重新同步所有原料
func RecomputeFormula(f Formula) Formula {
	out := f.Clone()
	ctx := f.Context().Normalized()
	out.Density = ctx.Density
	out.BatchWeight = ctx.BatchWeight
	out.Type = ParseType(string(f.Type))
	for i, m := range out.Materials {
		out.Materials[i] = Recompute(m, FieldSync, 0, ctx)
	}
	return out
}

// ClampPercent 將百分比限制在 [0,100]，非有限值視為 0
func ClampPercent(v float64) float64 {
	return math.Min(100, math.Max(0, finite(v)))
}

func percentOf(grams, batchWeight float64) float64 {
	if batchWeight <= 0 {
		return 0
	}
	return grams / batchWeight * 100
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func nonNegative(v float64) float64 {
	return math.Max(0, finite(v))
}
