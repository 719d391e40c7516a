package formula

import (
	"encoding/json"
	"strings"
	"time"
)

// DropsPerML 每毫升的滴數
const DropsPerML = 20.0

// 匯入時使用的預設值
const (
	DefaultName        = "Formula importata"
	DefaultBatchWeight = 100.0
	DefaultDensity     = 0.94
	DefaultDilution    = 100.0
)

// Type 香水類型
type Type string

const (
	TypeEDC     Type = "EDC"
	TypeEDT     Type = "EDT"
	TypeEDP     Type = "EDP"
	TypeExtrait Type = "EX"
)

// ParseType 解析香水類型，無法辨識時回傳 EDP
func ParseType(raw string) Type {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "EDC":
		return TypeEDC
	case "EDT":
		return TypeEDT
	case "EX", "EXTRAIT", "PARFUM", "EXTRAIT DE PARFUM":
		return TypeExtrait
	default:
		return TypeEDP
	}
}

// Range 百分比區間（含端點）
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains 判斷數值是否落在區間內
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// typeQuota 各類型建議的濃縮比例
var typeQuota = map[Type]Range{
	TypeEDC:     {Min: 6, Max: 10},
	TypeEDT:     {Min: 8, Max: 15},
	TypeEDP:     {Min: 15, Max: 25},
	TypeExtrait: {Min: 25, Max: 40},
}

// Quota 回傳類型對應的濃縮比例區間，未知類型使用 EDP
func Quota(t Type) Range {
	if q, ok := typeQuota[ParseType(string(t))]; ok {
		return q
	}
	return typeQuota[TypeEDP]
}

// Material 配方中的一項原料
type Material struct {
	ID       string  `json:"id,omitempty"`
	Note     string  `json:"note"`
	Grams    float64 `json:"grams"`
	ML       float64 `json:"ml"`
	Drops    float64 `json:"drops"`
	Percent  float64 `json:"percent"`
	Dilution float64 `json:"dilution"`
}

// NewMaterial 建立空白原料，稀釋度為 100
func NewMaterial(id, note string) Material {
	return Material{ID: id, Note: note, Dilution: DefaultDilution}
}

// UnmarshalJSON 未提供 dilution 時預設為 100
func (m *Material) UnmarshalJSON(data []byte) error {
	type plain Material
	aux := plain{Dilution: DefaultDilution}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = Material(aux)
	return nil
}

// Formula 完整配方
type Formula struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name"`
	Type        Type       `json:"type"`
	BatchWeight float64    `json:"batchWeight"`
	Density     float64    `json:"density"`
	Materials   []Material `json:"materials"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Context 換算所需的批次參數
func (f Formula) Context() Context {
	return Context{Density: f.Density, BatchWeight: f.BatchWeight}
}

// Clone 深拷貝配方
func (f Formula) Clone() Formula {
	out := f
	out.Materials = append([]Material(nil), f.Materials...)
	return out
}
