package notes

// 香調金字塔層級（沿用義大利文標籤）
const (
	LevelTop   = "Testa"
	LevelHeart = "Cuore"
	LevelBase  = "Fondo"
)

// FamilyNeutral 無法辨識的原料所使用的中性香族
const FamilyNeutral = "Neutral"

// DefaultLevels 固定的金字塔輸出順序
var DefaultLevels = []string{LevelTop, LevelHeart, LevelBase}

// levelSynonyms 各資料集常見的層級寫法
var levelSynonyms = map[string]string{
	"testa":  LevelTop,
	"top":    LevelTop,
	"head":   LevelTop,
	"cuore":  LevelHeart,
	"heart":  LevelHeart,
	"middle": LevelHeart,
	"fondo":  LevelBase,
	"base":   LevelBase,
	"bottom": LevelBase,
}

// neutralFamilies 不參與香族權重計算的標籤
var neutralFamilies = map[string]struct{}{
	"neutral": {},
	"neutra":  {},
	"custom":  {},
}

// CanonicalLevel 將層級名稱統一成 Testa / Cuore / Fondo，未知層級原樣保留
func CanonicalLevel(level string) string {
	if canonical, ok := levelSynonyms[Normalize(level)]; ok {
		return canonical
	}
	return level
}

// IsNeutralFamily 判斷是否為中性或自訂的佔位香族
func IsNeutralFamily(family string) bool {
	_, ok := neutralFamilies[Normalize(family)]
	return ok
}

// NoteProfile 原料的香族與金字塔層級
type NoteProfile struct {
	Name     string   `json:"name"`
	Families []string `json:"families"`
	Pyramid  []string `json:"pyramid"`
}

// Clone 複製一份，避免呼叫端改動目錄內的切片
func (p NoteProfile) Clone() NoteProfile {
	return NoteProfile{
		Name:     p.Name,
		Families: append([]string{}, p.Families...),
		Pyramid:  append([]string{}, p.Pyramid...),
	}
}

// Entry 目錄條目
type Entry struct {
	Key     string
	Group   string
	Profile NoteProfile
}

// BaseNote 主資料集格式
type BaseNote struct {
	Name     string   `json:"name"`
	Families []string `json:"families,omitempty"`
	Pyramid  []string `json:"pyramid,omitempty"`
}

// MasterNote 原料庫格式，可附帶別名
type MasterNote struct {
	Name        string   `json:"name"`
	Group       string   `json:"group,omitempty"`
	Families    []string `json:"families,omitempty"`
	Pyramid     []string `json:"pyramid,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	Synonyms    []string `json:"synonyms,omitempty"`
	CommonNames []string `json:"commonNames,omitempty"`
	Use         []string `json:"use,omitempty"`
}

// Alias 使用者別名，兩端皆已正規化
type Alias struct {
	Alias     string `json:"alias"`
	Canonical string `json:"canonical"`
}

// Tier 名稱解析命中的層級
type Tier string

const (
	TierEmpty    Tier = "empty"
	TierAlias    Tier = "alias"
	TierExact    Tier = "exact"
	TierFuzzy    Tier = "fuzzy"
	TierFallback Tier = "fallback"
)

// Resolution 名稱解析結果
type Resolution struct {
	Profile      *NoteProfile `json:"profile"`
	CanonicalKey string       `json:"canonicalKey"`
	Confidence   float64      `json:"confidence"`
	Unmapped     bool         `json:"unmapped"`
	Tier         Tier         `json:"tier"`
}
