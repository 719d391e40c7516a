package notes

import (
	"sort"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Catalog 原料目錄索引，建立後唯讀，可在多個 goroutine 間共用
type Catalog struct {
	byKey   map[string]*Entry
	ordered []*Entry
	aliases map[string]string
}

// BuildCatalog 依序合併主資料集、原料庫與使用者別名。
// 名稱衝突時聯集香族與層級（保留先出現的順序），別名衝突時先寫入者勝出。
func BuildCatalog(primary []BaseNote, master []MasterNote, userAliases []Alias) *Catalog {
	c := &Catalog{
		byKey:   make(map[string]*Entry),
		aliases: make(map[string]string),
	}

	for _, note := range primary {
		c.merge(note.Name, "", note.Families, note.Pyramid)
	}

	for _, item := range master {
		key := c.merge(item.Name, item.Group, item.Families, item.Pyramid)
		if key == "" {
			continue
		}
		names := make([]string, 0, len(item.Aliases)+len(item.Synonyms)+len(item.CommonNames))
		names = append(names, item.Aliases...)
		names = append(names, item.Synonyms...)
		names = append(names, item.CommonNames...)
		for _, a := range names {
			c.addAlias(Normalize(a), key)
		}
	}

	for _, a := range userAliases {
		c.addAlias(Normalize(a.Alias), Normalize(a.Canonical))
	}

	c.sortEntries()
	return c
}

// merge 新增或合併一個條目，回傳其正規化鍵
func (c *Catalog) merge(name, group string, families, pyramid []string) string {
	key := Normalize(name)
	if key == "" {
		return ""
	}
	levels := lo.Map(pyramid, func(l string, _ int) string { return CanonicalLevel(l) })

	entry, ok := c.byKey[key]
	if !ok {
		entry = &Entry{
			Key:   key,
			Group: group,
			Profile: NoteProfile{
				Name:     name,
				Families: []string{},
				Pyramid:  []string{},
			},
		}
		c.byKey[key] = entry
		c.ordered = append(c.ordered, entry)
	}
	if entry.Group == "" {
		entry.Group = group
	}
	entry.Profile.Families = unionOrdered(entry.Profile.Families, families)
	entry.Profile.Pyramid = unionOrdered(entry.Profile.Pyramid, levels)
	return key
}

func (c *Catalog) addAlias(alias, canonical string) {
	if alias == "" || canonical == "" {
		return
	}
	if _, exists := c.aliases[alias]; exists {
		return
	}
	c.aliases[alias] = canonical
}

// sortEntries 依義大利文排序規則排序顯示名稱，相同時以位元組順序決定
func (c *Catalog) sortEntries() {
	col := collate.New(language.Italian)
	sort.SliceStable(c.ordered, func(i, j int) bool {
		a, b := c.ordered[i].Profile.Name, c.ordered[j].Profile.Name
		if cmp := col.CompareString(a, b); cmp != 0 {
			return cmp < 0
		}
		return a < b
	})
}

// unionOrdered 聯集兩個字串集合，保留先出現順序並略過空字串
func unionOrdered(existing, incoming []string) []string {
	return lo.Uniq(lo.Compact(append(append([]string{}, existing...), incoming...)))
}

// Lookup 以正規化鍵查詢條目
func (c *Catalog) Lookup(key string) (*Entry, bool) {
	e, ok := c.byKey[key]
	return e, ok
}

// AliasTarget 查詢資料集內建（含建立時帶入的使用者）別名
func (c *Catalog) AliasTarget(alias string) (string, bool) {
	target, ok := c.aliases[alias]
	return target, ok
}

// Entries 依排序後順序回傳所有條目
func (c *Catalog) Entries() []*Entry {
	return c.ordered
}

// Names 依排序後順序回傳標準顯示名稱
func (c *Catalog) Names() []string {
	return lo.Map(c.ordered, func(e *Entry, _ int) string { return e.Profile.Name })
}

// Groups 回傳出現過的原料分組（依首次出現順序）
func (c *Catalog) Groups() []string {
	return lo.Uniq(lo.Compact(lo.Map(c.ordered, func(e *Entry, _ int) string { return e.Group })))
}

// Len 條目數量
func (c *Catalog) Len() int {
	return len(c.ordered)
}

// AliasCount 內建別名數量
func (c *Catalog) AliasCount() int {
	return len(c.aliases)
}
