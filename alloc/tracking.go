package alloc

import (
	"go.uber.org/atomic"
)

// Tracking 包装另一个 Allocator 并统计存活分配数，
// 主要用于在测试中验证“失败路径不泄漏”的约束。
type Tracking struct {
	inner Allocator

	allocs *atomic.Int64
	frees  *atomic.Int64
}

var _ Allocator = (*Tracking)(nil)

// NewTracking 基于 inner 创建一个带统计的分配器；inner 为 nil 时使用 Go()。
func NewTracking(inner Allocator) *Tracking {
	if inner == nil {
		inner = Go()
	}
	return &Tracking{
		inner:  inner,
		allocs: atomic.NewInt64(0),
		frees:  atomic.NewInt64(0),
	}
}

func (t *Tracking) Allocate(n int) ([]byte, error) {
	b, err := t.inner.Allocate(n)
	if err == nil {
		t.allocs.Inc()
	}
	return b, err
}

func (t *Tracking) Resize(b []byte, n int) ([]byte, error) {
	// Resize 视为一次 free 加一次 allocate，净存活数不变。
	return t.inner.Resize(b, n)
}

func (t *Tracking) Free(b []byte) {
	t.frees.Inc()
	t.inner.Free(b)
}

// Live 返回当前存活的分配数。
func (t *Tracking) Live() int64 {
	return t.allocs.Load() - t.frees.Load()
}

// Allocs 返回累计分配次数。
func (t *Tracking) Allocs() int64 {
	return t.allocs.Load()
}

// Frees 返回累计释放次数。
func (t *Tracking) Frees() int64 {
	return t.frees.Load()
}
