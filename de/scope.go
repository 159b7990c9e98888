package de

import (
	"unsafe"

	"github.com/sea-grass/getty/alloc"
	"github.com/sea-grass/getty/pkg/merr"
)

// scope 记录一次解码调用内经由分配器产生的全部分配，
// 支撑“复合结构部分失败不泄漏”的约束：
// 复合结构中第 k 项失败时，先释放本复合结构内 1..k-1 项的分配，
// 再向上传播错误；成功路径上分配保留，所有权移交调用方。
//
// scope 自身实现 alloc.Allocator，自定义 Unmarshaler 拿到的就是它，
// 因此逃生舱口里的分配同样参与失败清理。
type scope struct {
	a    alloc.Allocator
	bufs [][]byte
}

var _ alloc.Allocator = (*scope)(nil)

func newScope(a alloc.Allocator) *scope {
	return &scope{a: a}
}

func (s *scope) Allocate(n int) ([]byte, error) {
	b, err := s.a.Allocate(n)
	if err != nil {
		return nil, err
	}
	if len(b) < n {
		return nil, merr.WrapErrAllocation(n)
	}
	if b != nil {
		s.bufs = append(s.bufs, b)
	}
	return b, nil
}

func (s *scope) Resize(b []byte, n int) ([]byte, error) {
	nb, err := s.a.Resize(b, n)
	if err != nil {
		return nil, err
	}
	if len(nb) < n {
		return nil, merr.WrapErrAllocation(n)
	}
	if i := s.index(b); i >= 0 {
		s.bufs[i] = nb
	} else {
		s.bufs = append(s.bufs, nb)
	}
	return nb, nil
}

func (s *scope) Free(b []byte) {
	if i := s.index(b); i >= 0 {
		s.bufs = append(s.bufs[:i], s.bufs[i+1:]...)
	}
	s.a.Free(b)
}

// mark 返回当前检查点；配合 releaseFrom 划定一个复合结构的分配区间。
func (s *scope) mark() int {
	return len(s.bufs)
}

// releaseFrom 释放检查点之后的全部分配并截断记录，
// 使外层复合结构失败时不会重复释放。
func (s *scope) releaseFrom(mark int) {
	for i := len(s.bufs) - 1; i >= mark; i-- {
		s.a.Free(s.bufs[i])
	}
	s.bufs = s.bufs[:mark]
}

func (s *scope) index(b []byte) int {
	p := unsafe.SliceData(b)
	for i, eb := range s.bufs {
		if unsafe.SliceData(eb) == p {
			return i
		}
	}
	return -1
}
