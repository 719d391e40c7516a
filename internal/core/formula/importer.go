package formula

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"parfum-formulator/internal/core/notes"
	"parfum-formulator/internal/pkg/common"
)

// ErrNotObject 匯入內容不是 JSON 物件
var ErrNotObject = errors.New("formula JSON must be an object")

// ImportFormula 將任意 JSON 轉成配方，數值欄位一律寬鬆轉換。
// 只有內容不是 JSON 物件時才回傳錯誤；缺少的欄位以預設值補上。
func ImportFormula(data []byte, resolver Resolver) (Formula, error) {
	if !gjson.ValidBytes(data) {
		return Formula{}, ErrNotObject
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Formula{}, ErrNotObject
	}

	f := Formula{
		ID:          root.Get("id").String(),
		Name:        stringOr(root.Get("name"), DefaultName),
		Type:        ParseType(root.Get("type").String()),
		BatchWeight: numberOr(root.Get("batchWeight"), DefaultBatchWeight),
		Density:     numberOr(root.Get("density"), DefaultDensity),
		Materials:   []Material{},
	}
	if ts, err := time.Parse(time.RFC3339Nano, root.Get("updatedAt").String()); err == nil {
		f.UpdatedAt = ts
	}
	ctx := f.Context().Normalized()

	items := root.Get("materials")
	if !items.IsArray() {
		return f, nil
	}
	for i, item := range items.Array() {
		note := stringOr(item.Get("note"), fmt.Sprintf("Nota %d", i+1))
		if resolver != nil {
			if res := resolver.Resolve(note); res.Profile != nil {
				note = res.Profile.Name
			}
		}

		grams := numberOr(item.Get("grams"), 0)
		percent := numberOr(item.Get("percent"), 0)
		if grams <= 0 && percent > 0 {
			grams = percent / 100 * ctx.BatchWeight
		}

		m := Material{
			ID:       "mat-" + uuid.NewString(),
			Note:     note,
			Grams:    grams,
			Percent:  percent,
			Dilution: ClampPercent(finiteOr(item.Get("dilution"), DefaultDilution)),
		}
		f.Materials = append(f.Materials, Recompute(m, FieldSync, 0, ctx))
	}
	return f, nil
}

// ExportFormula 以縮排 JSON 輸出配方
func ExportFormula(f Formula) ([]byte, error) {
	out := f.Clone()
	if out.Materials == nil {
		out.Materials = []Material{}
	}
	return common.ToIndentedJSON(out)
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// SafeFileName 由配方名稱產生安全的檔名
func SafeFileName(name, extension string) string {
	base := strings.Trim(unsafeFileChars.ReplaceAllString(notes.Normalize(name), "-"), "-")
	if base == "" {
		base = "formula"
	}
	return base + "." + strings.TrimPrefix(extension, ".")
}

// stringOr 空值或空字串時回傳預設值
func stringOr(r gjson.Result, fallback string) string {
	switch r.Type {
	case gjson.Null, gjson.False:
		return fallback
	}
	if s := strings.TrimSpace(r.String()); s != "" {
		return s
	}
	return fallback
}

// numberOr 轉成數值，缺少、為 0 或無法解析時回傳預設值
func numberOr(r gjson.Result, fallback float64) float64 {
	v, ok := toNumber(r)
	if !ok || v == 0 {
		return fallback
	}
	return v
}

// finiteOr 轉成數值，允許 0，缺少或無法解析時回傳預設值
func finiteOr(r gjson.Result, fallback float64) float64 {
	v, ok := toNumber(r)
	if !ok {
		return fallback
	}
	return v
}

func toNumber(r gjson.Result) (float64, bool) {
	var v float64
	switch r.Type {
	case gjson.Number:
		v = r.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	case gjson.True:
		v = 1
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
