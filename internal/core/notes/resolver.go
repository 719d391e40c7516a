package notes

// 各命中層級的信心值
const (
	ConfidenceExact    = 1.0
	ConfidenceFuzzy    = 0.8
	ConfidenceFallback = 0.2
)

// Resolver 將自由輸入的原料名稱對應到目錄條目
type Resolver struct {
	catalog *Catalog
	aliases *AliasTable
}

// NewResolver 建立解析器；aliases 可為 nil
func NewResolver(catalog *Catalog, aliases *AliasTable) *Resolver {
	return &Resolver{catalog: catalog, aliases: aliases}
}

// Catalog 回傳解析器使用的目錄
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Aliases 回傳執行期的使用者別名表
func (r *Resolver) Aliases() *AliasTable {
	return r.aliases
}

// Resolve 依序嘗試：空值、別名、完全符合、模糊比對，最後回傳中性的預設結果
func (r *Resolver) Resolve(rawName string) Resolution {
	key := Normalize(rawName)
	if key == "" {
		return Resolution{Confidence: 0, Unmapped: true, Tier: TierEmpty}
	}

	canonicalKey, tier := key, TierExact
	if target, ok := r.catalog.AliasTarget(key); ok {
		canonicalKey, tier = target, TierAlias
	} else if target, ok := r.aliases.Lookup(key); ok {
		canonicalKey, tier = target, TierAlias
	}

	if entry, ok := r.catalog.Lookup(canonicalKey); ok {
		return Resolution{
			Profile:      profileOf(entry),
			CanonicalKey: canonicalKey,
			Confidence:   ConfidenceExact,
			Tier:         tier,
		}
	}

	if entry, score := r.best(rawName); entry != nil && score >= AcceptScore {
		return Resolution{
			Profile:      profileOf(entry),
			CanonicalKey: entry.Key,
			Confidence:   ConfidenceFuzzy,
			Tier:         TierFuzzy,
		}
	}

	return Resolution{
		Profile: &NoteProfile{
			Name:     rawName,
			Families: []string{FamilyNeutral},
			Pyramid:  []string{LevelHeart},
		},
		CanonicalKey: key,
		Confidence:   ConfidenceFallback,
		Unmapped:     true,
		Tier:         TierFallback,
	}
}

// best 線性掃描所有標準名稱，同分時保留排序較前者
func (r *Resolver) best(rawName string) (*Entry, int) {
	var best *Entry
	bestScore := NoScore
	for _, entry := range r.catalog.Entries() {
		if s := Score(rawName, entry.Profile.Name); s > bestScore {
			best, bestScore = entry, s
		}
	}
	return best, bestScore
}

// profileOf 複製條目的香調資料，沒有層級的條目歸入 Cuore
func profileOf(entry *Entry) *NoteProfile {
	p := entry.Profile.Clone()
	if len(p.Pyramid) == 0 {
		p.Pyramid = []string{LevelHeart}
	}
	return &p
}
