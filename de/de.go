// Package de 定义反序列化侧的能力契约与解码双分发协议。
//
// 控制流与编码侧相反：Deserializer 检视输入源并判定下一个数据模型类别，
// 随后对调用方给定的 Visitor 恰好调用一个 Visit 方法；Visitor 绑定到唯一
// 的目标类型，把这一个解码事件转换为该类型的值或失败。复合结构通过
// 访问游标（SeqAccess / MapAccess）逐项拉取，每一项都会重新进入本协议。
package de

import (
	"github.com/sea-grass/getty/alloc"
)

// Visitor 把一个解码事件转换为目标类型的值。
//
// 解码是严格的封闭契约：目标类型只接受其 Visitor 显式实现的类别，
// 依赖 VisitorBase 默认实现的类别一律以 ErrUnexpectedCategory 失败。
type Visitor interface {
	// Expecting 描述该访问者期望的内容，用于构造错误信息。
	Expecting() string

	VisitBool(v bool) (any, error)
	VisitInt(v int64) (any, error)
	VisitUint(v uint64) (any, error)
	VisitFloat(v float64) (any, error)
	VisitString(v string) (any, error)
	VisitBytes(v []byte) (any, error)
	VisitNil() (any, error)

	// VisitSome 表示可选值存在，内部值从 d 递归解码。
	VisitSome(d Deserializer) (any, error)

	VisitSeq(seq SeqAccess) (any, error)
	VisitMap(m MapAccess) (any, error)
	VisitVariant(name string) (any, error)
}

// Deserializer 是具体解码格式需要实现的能力接口。
//
// Deserialize* 方法名表达的是调用方的类型提示；格式拥有输入源，
// 由它决定实际出现的类别并回调 Visitor 的对应方法。
// 每次调用要么在 Visitor 产出值后结束，要么以错误结束，不会二次回调。
type Deserializer interface {
	// DeserializeAny 由格式完全自行判定类别（自描述格式）。
	DeserializeAny(v Visitor) (any, error)

	DeserializeBool(v Visitor) (any, error)
	DeserializeInt(v Visitor) (any, error)
	DeserializeFloat(v Visitor) (any, error)
	DeserializeString(v Visitor) (any, error)
	DeserializeBytes(v Visitor) (any, error)

	// DeserializeOptional 判定空值与否：空值回调 VisitNil，
	// 否则回调 VisitSome。
	DeserializeOptional(v Visitor) (any, error)

	DeserializeSeq(v Visitor) (any, error)
	DeserializeMap(v Visitor) (any, error)

	// DeserializeStruct 携带目标结构体的类型名与字段名提示。
	DeserializeStruct(name string, fields []string, v Visitor) (any, error)

	// DeserializeTuple 携带定长元组的元素个数提示。
	DeserializeTuple(length int, v Visitor) (any, error)

	DeserializeVariant(v Visitor) (any, error)
}

// DeserializeFunc 是复合结构中单个条目的解码种子：给定定位到该条目的
// 子 Deserializer，执行类型导向的递归解码。
type DeserializeFunc func(d Deserializer) (any, error)

// SeqAccess 是序列解码游标，由 Deserializer 在一次复合解码期间持有。
type SeqAccess interface {
	// NextElement 拉取并解码下一个元素。
	// 第二个返回值为 false 表示序列结束（长度未知的源以此终止迭代）。
	NextElement(seed DeserializeFunc) (any, bool, error)
}

// MapAccess 是映射解码游标；键与值交替拉取。
type MapAccess interface {
	// NextKey 拉取并解码下一个键；第二个返回值为 false 表示映射结束。
	NextKey(seed DeserializeFunc) (any, bool, error)

	// NextValue 拉取并解码与最近一个键配对的值。
	NextValue(seed DeserializeFunc) (any, error)
}

// Unmarshaler 是自定义反序列化的逃生舱口，在指针接收者上实现；
// 实现该接口的类型完全绕过结构化解码。
type Unmarshaler interface {
	UnmarshalGetty(a alloc.Allocator, d Deserializer) error
}

// VariantUnmarshaler 在指针接收者上实现，把变体标签还原为枚举取值。
type VariantUnmarshaler interface {
	UnmarshalVariant(name string) error
}
