// Package alloc 定义解码阶段使用的分配器协作方。
//
// 解码产生的“有所有权”结果（字符串、字节序列的底层存储）都从调用方提供的
// Allocator 获取；框架自身从不保留这些内存。复合结构解码中途失败时，
// 之前已经产生的分配会通过同一个 Allocator 释放后再向上传播错误。
package alloc

// Allocator 抽象 allocate/resize/free 三个能力。
//
// 实现可以是 GC 托管（Free 为空操作）、池化或竞技场式的；
// 同一棵解码树内按单一所有者方式使用，框架不做并发保护。
type Allocator interface {
	// Allocate 返回一块长度为 n 的新内存；失败时返回错误，
	// 错误会原样沿解码调用链向上传播。
	Allocate(n int) ([]byte, error)

	// Resize 将 b 调整为长度 n，必要时搬迁内容；返回调整后的内存。
	// 旧内存在搬迁后视为已释放，调用方不应再使用 b。
	Resize(b []byte, n int) ([]byte, error)

	// Free 释放一块由 Allocate 或 Resize 返回的内存。
	Free(b []byte)
}

// gcAllocator 是 GC 托管的默认实现，从不失败，Free 为空操作。
type gcAllocator struct{}

var _ Allocator = gcAllocator{}

// Go 返回 GC 托管的默认分配器。
func Go() Allocator {
	return gcAllocator{}
}

func (gcAllocator) Allocate(n int) ([]byte, error) {
	return make([]byte, n), nil
}

func (gcAllocator) Resize(b []byte, n int) ([]byte, error) {
	if n <= cap(b) {
		return b[:n], nil
	}
	nb := make([]byte, n)
	copy(nb, b)
	return nb, nil
}

func (gcAllocator) Free(b []byte) {}
