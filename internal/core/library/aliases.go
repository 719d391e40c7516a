package library

import (
	"context"
	"encoding/json"
	"fmt"

	"parfum-formulator/internal/core/notes"
	"parfum-formulator/internal/pkg/common"
)

// AliasStore 持久化使用者別名，只能追加
type AliasStore struct {
	store Store
}

// NewAliasStore 建立別名儲存
func NewAliasStore(store Store) *AliasStore {
	return &AliasStore{store: store}
}

// Load 依別名排序回傳所有已保存的別名
func (a *AliasStore) Load(ctx context.Context) ([]notes.Alias, error) {
	items, err := a.store.List(ctx, NamespaceAliases)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}

	out := make([]notes.Alias, 0, len(items))
	for _, id := range sortedIDs(items) {
		var alias notes.Alias
		if err := common.ParseJSONBytes(items[id], &alias); err != nil {
			return nil, fmt.Errorf("decode alias %q: %w", id, err)
		}
		out = append(out, alias)
	}
	return out, nil
}

// Append 寫入別名，已存在時不覆寫並回傳 false
func (a *AliasStore) Append(ctx context.Context, alias notes.Alias) (bool, error) {
	data, err := json.Marshal(alias)
	if err != nil {
		return false, err
	}
	ok, err := a.store.PutIfAbsent(ctx, NamespaceAliases, alias.Alias, data)
	if err != nil {
		return false, fmt.Errorf("append alias: %w", err)
	}
	return ok, nil
}
