// Package ser 定义序列化侧的能力契约与类型导向的编码分发。
//
// 一个具体编码格式通过实现 Serializer 接入框架；分发算法把任意受支持的
// Go 值映射为对 Serializer 的一段确定的调用序列，双方都无需了解对方的
// 具体线上格式。
package ser

// Serializer 是具体编码格式需要实现的能力接口。
//
// 数值方法按宽度逐一列出，本层不做任何隐式放大或收窄，
// 源值的宽度与精度原样转发给具体格式。
type Serializer interface {
	SerializeBool(v bool) error

	SerializeInt(v int) error
	SerializeInt8(v int8) error
	SerializeInt16(v int16) error
	SerializeInt32(v int32) error
	SerializeInt64(v int64) error

	SerializeUint(v uint) error
	SerializeUint8(v uint8) error
	SerializeUint16(v uint16) error
	SerializeUint32(v uint32) error
	SerializeUint64(v uint64) error

	SerializeFloat32(v float32) error
	SerializeFloat64(v float64) error

	SerializeString(v string) error
	SerializeBytes(v []byte) error

	// SerializeNil 编码空值（缺失的可选值）。
	SerializeNil() error

	// SerializeVariant 编码一个无负载变体的标签。
	SerializeVariant(name string) error

	// SerializeSeq 开始编码一个序列；length < 0 表示长度未知。
	SerializeSeq(length int) (SeqSerializer, error)

	// SerializeMap 开始编码一个映射；length < 0 表示长度未知。
	SerializeMap(length int) (MapSerializer, error)

	// SerializeStruct 开始编码一个具名字段结构。
	SerializeStruct(name string, numFields int) (StructSerializer, error)

	// SerializeTuple 开始编码一个定长位置元组。
	SerializeTuple(length int) (TupleSerializer, error)
}

// SeqSerializer 是序列编码会话。
//
// 生命周期：由 SerializeSeq 创建，接收零或多次 SerializeElement，
// 最后恰好一次 End。End 之后再调用任何方法属于使用方错误，
// 具体格式允许将其实现为断言失败。
type SeqSerializer interface {
	// SerializeElement 按源顺序编码下一个元素（递归分发）。
	SerializeElement(v any) error

	// End 结束本序列。零长度序列也必须调用 End。
	End() error
}

// TupleSerializer 是元组编码会话，协议与 SeqSerializer 相同，
// 但元素个数在创建时即已固定。
type TupleSerializer interface {
	SerializeElement(v any) error
	End() error
}

// MapSerializer 是映射编码会话。
//
// 调用方可以成对使用 SerializeKey/SerializeValue，
// 也可以使用合并的 SerializeEntry，两者不得交错混用同一个条目。
type MapSerializer interface {
	SerializeKey(k any) error
	SerializeValue(v any) error

	// SerializeEntry 一次编码一个键值对。
	SerializeEntry(k, v any) error

	End() error
}

// StructSerializer 是结构体编码会话；字段按声明顺序逐一写出。
type StructSerializer interface {
	SerializeField(name string, v any) error
	End() error
}

// Marshaler 是自定义序列化的逃生舱口。
// 实现该接口的类型完全绕过结构化分发，优先级高于所有结构规则。
type Marshaler interface {
	MarshalGetty(s Serializer) error
}

// Variant 标记一个无负载的枚举（变体）类型。
// VariantName 返回当前取值对应的标签。
type Variant interface {
	VariantName() string
}
