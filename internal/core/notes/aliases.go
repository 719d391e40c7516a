package notes

import "sync"

// AliasTable 使用者別名表：只能追加，重複新增為無操作，可並行使用
type AliasTable struct {
	mu    sync.RWMutex
	index map[string]string
	list  []Alias
}

// NewAliasTable 以既有別名建立別名表，重複的別名只保留第一筆
func NewAliasTable(initial []Alias) *AliasTable {
	t := &AliasTable{index: make(map[string]string)}
	for _, a := range initial {
		t.Add(a.Alias, a.Canonical)
	}
	return t
}

// Add 追加一筆別名，回傳正規化後的別名與是否真的新增
func (t *AliasTable) Add(alias, canonical string) (Alias, bool) {
	item := Alias{Alias: Normalize(alias), Canonical: Normalize(canonical)}
	if item.Alias == "" || item.Canonical == "" {
		return item, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.index[item.Alias]; ok {
		return Alias{Alias: item.Alias, Canonical: existing}, false
	}
	t.index[item.Alias] = item.Canonical
	t.list = append(t.list, item)
	return item, true
}

// Lookup 查詢別名對應的標準鍵
func (t *AliasTable) Lookup(alias string) (string, bool) {
	if t == nil {
		return "", false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	canonical, ok := t.index[alias]
	return canonical, ok
}

// List 依新增順序回傳所有別名的副本
func (t *AliasTable) List() []Alias {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Alias{}, t.list...)
}

// Len 別名數量；因為只能追加，也可當作版本號使用
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.list)
}
