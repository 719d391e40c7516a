package library

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"parfum-formulator/internal/core/formula"
	"parfum-formulator/internal/core/notes"
	"parfum-formulator/internal/infrastructure/metrics"
	"parfum-formulator/internal/pkg/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// UntitledName 未命名配方使用的名稱
	UntitledName = "Formula senza titolo"
	// CopySuffix 複製配方時加在名稱後的字尾
	CopySuffix = " (copia)"
)

// InsightsCache 新增別名後需要清除的分析快取
type InsightsCache interface {
	InvalidateInsights() int
}

// Service 配方庫、草稿與使用者別名的服務
type Service struct {
	store    Store
	aliases  *AliasStore
	resolver *notes.Resolver
	drafts   *DraftSaver
	insights InsightsCache
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewService 創建配方庫服務；draftDelay 為 0 時草稿立即寫入，insights 與 m 可為 nil
func NewService(store Store, resolver *notes.Resolver, draftDelay time.Duration, insights InsightsCache, m *metrics.Metrics) *Service {
	s := &Service{
		store:    store,
		aliases:  NewAliasStore(store),
		resolver: resolver,
		insights: insights,
		metrics:  m,
		now:      time.Now,
	}
	s.drafts = NewDraftSaver(draftDelay, s.writeDraft, s.removeDraft)
	return s
}

// Save 保存配方，沒有 id 時產生新的 id
func (s *Service) Save(ctx context.Context, f formula.Formula) (formula.Formula, error) {
	if len(f.Materials) == 0 {
		return formula.Formula{}, common.ErrEmptyFormula
	}

	out := formula.RecomputeFormula(f.Clone())
	if strings.TrimSpace(out.ID) == "" {
		out.ID = newFormulaID()
	}
	if strings.TrimSpace(out.Name) == "" {
		out.Name = UntitledName
	}
	out.UpdatedAt = s.now().UTC()

	if err := s.put(ctx, NamespaceFormulas, out.ID, out); err != nil {
		return formula.Formula{}, err
	}

	// 正式保存後草稿即失效
	if err := s.ClearDraft(ctx, out.ID); err != nil && !errors.Is(err, common.ErrDraftNotFound) {
		common.LogWarn("清除草稿失敗", zap.String("formula_id", out.ID), zap.Error(err))
	}

	common.LogInfo("配方已保存",
		zap.String("formula_id", out.ID),
		zap.Int("materials", len(out.Materials)),
	)
	return out, nil
}

// Get 讀取配方
func (s *Service) Get(ctx context.Context, id string) (formula.Formula, error) {
	var f formula.Formula
	if err := s.get(ctx, NamespaceFormulas, id, &f); err != nil {
		if errors.Is(err, ErrNotFound) {
			return formula.Formula{}, common.ErrFormulaNotFound
		}
		return formula.Formula{}, err
	}
	return f, nil
}

// List 依更新時間由新到舊列出所有配方
func (s *Service) List(ctx context.Context) ([]formula.Formula, error) {
	items, err := s.store.List(ctx, NamespaceFormulas)
	if err != nil {
		return nil, common.ErrStorage.Wrap(err)
	}

	out := make([]formula.Formula, 0, len(items))
	for id, data := range items {
		var f formula.Formula
		if err := common.ParseJSONBytes(data, &f); err != nil {
			common.LogWarn("略過無法解析的配方", zap.String("formula_id", id), zap.Error(err))
			continue
		}
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Duplicate 複製配方，新配方有新的 id 並在名稱後加上字尾
func (s *Service) Duplicate(ctx context.Context, id string) (formula.Formula, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return formula.Formula{}, err
	}

	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = UntitledName
	}

	dup := src.Clone()
	dup.ID = newFormulaID()
	dup.Name = name + CopySuffix
	return s.Save(ctx, dup)
}

// Delete 刪除配方
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, NamespaceFormulas, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.ErrFormulaNotFound
		}
		return common.ErrStorage.Wrap(err)
	}
	common.LogInfo("配方已刪除", zap.String("formula_id", id))
	return nil
}

// SaveDraft 排程保存草稿，短時間內的多次保存只寫入最後一次
func (s *Service) SaveDraft(ctx context.Context, id string, f formula.Formula) (formula.Formula, error) {
	if strings.TrimSpace(id) == "" {
		return formula.Formula{}, common.NewValidationError("草稿 id 不可為空")
	}

	draft := f.Clone()
	draft.ID = id
	draft.UpdatedAt = s.now().UTC()

	if err := s.drafts.Schedule(ctx, id, draft); err != nil {
		return formula.Formula{}, err
	}
	return draft, nil
}

// LoadDraft 讀取草稿，尚未寫入的內容優先
func (s *Service) LoadDraft(ctx context.Context, id string) (formula.Formula, error) {
	if f, ok := s.drafts.Pending(id); ok {
		return f, nil
	}

	var f formula.Formula
	if err := s.get(ctx, NamespaceDrafts, id, &f); err != nil {
		if errors.Is(err, ErrNotFound) {
			return formula.Formula{}, common.ErrDraftNotFound
		}
		return formula.Formula{}, err
	}
	return f, nil
}

// ClearDraft 刪除草稿與尚未寫入的內容
func (s *Service) ClearDraft(ctx context.Context, id string) error {
	_, pending := s.drafts.Pending(id)
	s.drafts.Cancel(id)

	if err := s.store.Delete(ctx, NamespaceDrafts, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			if pending {
				return nil
			}
			return common.ErrDraftNotFound
		}
		return common.ErrStorage.Wrap(err)
	}
	return nil
}

// Aliases 回傳目前所有使用者別名
func (s *Service) Aliases() []notes.Alias {
	return s.resolver.Aliases().List()
}

// AddAlias 新增使用者別名；別名已存在時回傳既有內容與 false
func (s *Service) AddAlias(ctx context.Context, alias, canonical string) (notes.Alias, bool, error) {
	key := notes.Normalize(alias)
	target := notes.Normalize(canonical)
	if key == "" {
		return notes.Alias{}, false, common.NewValidationError("別名不可為空")
	}

	table := s.resolver.Aliases()
	if existing, ok := table.Lookup(key); ok {
		return notes.Alias{Alias: key, Canonical: existing}, false, nil
	}

	catalog := s.resolver.Catalog()
	if _, ok := catalog.Lookup(target); !ok {
		return notes.Alias{}, false, common.ErrUnknownCanonical
	}
	if _, ok := catalog.Lookup(key); ok {
		return notes.Alias{}, false, common.ErrAliasConflict
	}
	if _, ok := catalog.AliasTarget(key); ok {
		return notes.Alias{}, false, common.ErrAliasConflict
	}

	item, added := table.Add(key, target)
	if !added {
		return item, false, nil
	}

	if _, err := s.aliases.Append(ctx, item); err != nil {
		common.LogError("別名保存失敗", zap.String("alias", item.Alias), zap.Error(err))
		return item, true, common.ErrStorage.Wrap(err)
	}

	s.metrics.SetAliases(table.Len())
	if s.insights != nil {
		s.insights.InvalidateInsights()
	}
	common.LogInfo("新增使用者別名",
		zap.String("alias", item.Alias),
		zap.String("canonical", item.Canonical),
	)
	return item, true, nil
}

// LoadAliases 從儲存讀取使用者別名
func (s *Service) LoadAliases(ctx context.Context) ([]notes.Alias, error) {
	items, err := s.aliases.Load(ctx)
	if err != nil {
		return nil, common.ErrStorage.Wrap(err)
	}
	return items, nil
}

// Ping 檢查儲存是否可用
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close 寫入剩餘草稿
func (s *Service) Close(ctx context.Context) error {
	return s.drafts.Close(ctx)
}

func (s *Service) writeDraft(ctx context.Context, id string, f formula.Formula) error {
	return s.put(ctx, NamespaceDrafts, id, f)
}

func (s *Service) removeDraft(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, NamespaceDrafts, id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) put(ctx context.Context, namespace, id string, f formula.Formula) error {
	data, err := json.Marshal(f)
	if err != nil {
		return common.ErrStorage.Wrap(err)
	}
	if err := s.store.Put(ctx, namespace, id, data); err != nil {
		return common.ErrStorage.Wrap(err)
	}
	return nil
}

func (s *Service) get(ctx context.Context, namespace, id string, out *formula.Formula) error {
	data, err := s.store.Get(ctx, namespace, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return common.ErrStorage.Wrap(err)
	}
	if err := common.ParseJSONBytes(data, out); err != nil {
		return common.ErrStorage.Wrap(err)
	}
	return nil
}

func newFormulaID() string {
	return "formula-" + uuid.NewString()
}
