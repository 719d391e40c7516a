package library

import (
	"context"
	"sync"
	"time"

	"parfum-formulator/internal/core/formula"
	"parfum-formulator/internal/pkg/common"

	"go.uber.org/zap"
)

// draftWriteTimeout 延遲寫入時使用的逾時
const draftWriteTimeout = 5 * time.Second

// WriteFunc 實際寫入草稿的函式
type WriteFunc func(ctx context.Context, id string, f formula.Formula) error

// RemoveFunc 刪除已寫入的草稿
type RemoveFunc func(ctx context.Context, id string) error

type pendingDraft struct {
	formula   formula.Formula
	gen       uint64
	timer     *time.Timer
	inFlight  bool
	cancelled bool
}

// DraftSaver 合併短時間內的草稿寫入，同一個 id 只保留最後一次內容
type DraftSaver struct {
	delay   time.Duration
	write   WriteFunc
	remove  RemoveFunc
	mu      sync.Mutex
	writeMu sync.Mutex
	pending map[string]*pendingDraft
	gen     uint64
	wg      sync.WaitGroup
	closed  bool
}

// NewDraftSaver 建立草稿延遲寫入器；delay 為 0 時立即寫入。
// remove 用來撤銷取消後才完成的寫入，可為 nil。
func NewDraftSaver(delay time.Duration, write WriteFunc, remove RemoveFunc) *DraftSaver {
	return &DraftSaver{
		delay:   delay,
		write:   write,
		remove:  remove,
		pending: make(map[string]*pendingDraft),
	}
}

// Schedule 排程寫入草稿，在 delay 內重複呼叫會重新計時
func (d *DraftSaver) Schedule(ctx context.Context, id string, f formula.Formula) error {
	if d.delay <= 0 {
		return d.writeNow(ctx, id, f)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return d.writeNow(ctx, id, f)
	}
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if p, ok := d.pending[id]; ok && !p.inFlight {
		if p.timer.Stop() {
			d.wg.Done()
		}
	}

	d.wg.Add(1)
	d.pending[id] = &pendingDraft{
		formula: f,
		gen:     gen,
		timer: time.AfterFunc(d.delay, func() {
			defer d.wg.Done()
			d.fire(id, gen)
		}),
	}
	return nil
}

// Pending 回傳尚未寫入完成的草稿
func (d *DraftSaver) Pending(id string) (formula.Formula, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[id]
	if !ok {
		return formula.Formula{}, false
	}
	return p.formula, true
}

// Cancel 取消草稿；寫入進行中時會在寫入完成後刪除
func (d *DraftSaver) Cancel(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[id]
	if !ok {
		return
	}
	if p.inFlight {
		p.cancelled = true
	} else if p.timer.Stop() {
		d.wg.Done()
	}
	delete(d.pending, id)
}

// fire 計時器到期時寫入，若已被新的排程取代則略過
func (d *DraftSaver) fire(id string, gen uint64) {
	d.mu.Lock()
	p, ok := d.pending[id]
	if !ok || p.gen != gen {
		d.mu.Unlock()
		return
	}
	p.inFlight = true
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), draftWriteTimeout)
	defer cancel()

	// 同時只有一個寫入，較新的排程在寫完前仍留在 pending
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	// 等待期間已取消或被新的排程取代時不再寫入
	d.mu.Lock()
	stale := p.cancelled || d.pending[id] != p
	d.mu.Unlock()
	if stale {
		return
	}

	err := d.write(ctx, id, p.formula)

	d.mu.Lock()
	if d.pending[id] == p {
		delete(d.pending, id)
	}
	_, superseded := d.pending[id]
	cancelled := p.cancelled
	d.mu.Unlock()

	if err != nil {
		common.LogError("草稿自動儲存失敗", zap.String("draft_id", id), zap.Error(err))
		return
	}
	if cancelled && !superseded && d.remove != nil {
		if err := d.remove(ctx, id); err != nil {
			common.LogError("撤銷已取消的草稿失敗", zap.String("draft_id", id), zap.Error(err))
		}
		return
	}
	common.LogDebug("草稿已自動儲存", zap.String("draft_id", id))
}

func (d *DraftSaver) writeNow(ctx context.Context, id string, f formula.Formula) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	return d.write(ctx, id, f)
}

// Flush 立即寫入所有等待中的草稿，進行中的寫入由原本的計時器完成
func (d *DraftSaver) Flush(ctx context.Context) error {
	d.mu.Lock()
	batch := make(map[string]formula.Formula, len(d.pending))
	for id, p := range d.pending {
		if p.inFlight {
			continue
		}
		if p.timer.Stop() {
			d.wg.Done()
		}
		batch[id] = p.formula
		delete(d.pending, id)
	}
	d.mu.Unlock()

	var firstErr error
	for id, f := range batch {
		if err := d.writeNow(ctx, id, f); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close 寫入剩餘草稿並等待進行中的寫入完成
func (d *DraftSaver) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	err := d.Flush(ctx)
	d.wg.Wait()
	return err
}
