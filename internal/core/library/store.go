package library

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// 儲存命名空間
const (
	NamespaceFormulas = "formulas"
	NamespaceDrafts   = "drafts"
	NamespaceAliases  = "aliases"
)

// ErrNotFound 指定的項目不存在
var ErrNotFound = errors.New("not found")

// Store 以命名空間區分的鍵值儲存
type Store interface {
	Get(ctx context.Context, namespace, id string) ([]byte, error)
	Put(ctx context.Context, namespace, id string, data []byte) error
	// PutIfAbsent 只在 id 不存在時寫入，回傳是否寫入
	PutIfAbsent(ctx context.Context, namespace, id string, data []byte) (bool, error)
	Delete(ctx context.Context, namespace, id string) error
	List(ctx context.Context, namespace string) (map[string][]byte, error)
	Ping(ctx context.Context) error
	Close() error
}

// MemoryStore 行程內儲存，重新啟動後資料即消失
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryStore 建立記憶體儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

// Get 讀取項目
func (s *MemoryStore) Get(ctx context.Context, namespace, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[namespace][id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put 寫入或覆寫項目
func (s *MemoryStore) Put(ctx context.Context, namespace, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bucket(namespace)[id] = append([]byte(nil), data...)
	return nil
}

// PutIfAbsent 只在不存在時寫入
func (s *MemoryStore) PutIfAbsent(ctx context.Context, namespace, id string, data []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucket(namespace)
	if _, ok := b[id]; ok {
		return false, nil
	}
	b[id] = append([]byte(nil), data...)
	return true, nil
}

// Delete 刪除項目，不存在時回傳 ErrNotFound
func (s *MemoryStore) Delete(ctx context.Context, namespace, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.data[namespace]
	if _, ok := b[id]; !ok {
		return ErrNotFound
	}
	delete(b, id)
	return nil
}

// List 列出命名空間內所有項目
func (s *MemoryStore) List(ctx context.Context, namespace string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(s.data[namespace]))
	for id, v := range s.data[namespace] {
		out[id] = append([]byte(nil), v...)
	}
	return out, nil
}

// Ping 記憶體儲存永遠可用
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close 無需釋放資源
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) bucket(namespace string) map[string][]byte {
	b, ok := s.data[namespace]
	if !ok {
		b = make(map[string][]byte)
		s.data[namespace] = b
	}
	return b
}

// sortedIDs 回傳排序後的鍵
func sortedIDs(items map[string][]byte) []string {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
