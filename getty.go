// Package getty 是一个以数据模型为中心的通用序列化/反序列化框架。
//
// 框架把两个互不相干的维度解耦开：
//
//   - 一个值“长什么形状”——由编码分发根据静态类型一次性解析为封闭的
//     结构类别集合（布尔、各宽度数值、文本/字节、空值/可选、变体、
//     序列、映射、结构体、元组）；
//   - 一个具体格式“如何编码这个形状”——由可插拔的 ser.Serializer 与
//     de.Deserializer 实现提供。
//
// 编码流向：值 -> 分发 -> Serializer 调用序列 -> 下游 sink；
// 解码流向：上游 source -> Deserializer 判定类别 -> Visitor 产出目标值。
// 解码期间所有有所有权的结果由调用方提供的 alloc.Allocator 托管，
// 复合结构部分失败时已产出的条目会先经同一分配器释放再传播错误。
//
// 框架本身单线程、同步、纯调用栈驱动，不定义任何并发原语。
package getty

import (
	"github.com/sea-grass/getty/alloc"
	"github.com/sea-grass/getty/de"
	"github.com/sea-grass/getty/ser"
)

// Serialize 把 v 编码到 s。等价于 ser.Serialize。
func Serialize(v any, s ser.Serializer) error {
	return ser.Serialize(v, s)
}

// Deserialize 从 d 解码出一个 T。等价于 de.Deserialize。
func Deserialize[T any](a alloc.Allocator, d de.Deserializer) (T, error) {
	return de.Deserialize[T](a, d)
}

// DeserializeInto 从 d 解码并写入 target 指向的值。等价于 de.DeserializeInto。
func DeserializeInto(a alloc.Allocator, target any, d de.Deserializer) error {
	return de.DeserializeInto(a, target, d)
}
