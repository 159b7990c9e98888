// Package gettytest 提供测试用的内存参考格式。
//
// Recorder 实现 ser.Serializer，把收到的调用序列原样记录为事件流；
// Source 实现 de.Deserializer，从事件流回放解码。两者配合即可在不落地
// 任何具体线上格式的情况下验证编码分发、解码双分发与往返一致性。
package gettytest

import (
	"github.com/sea-grass/getty/internal/json"
)

// Op 标识一次序列化调用。
type Op string

const (
	OpBool Op = "Bool"

	OpInt   Op = "Int"
	OpInt8  Op = "Int8"
	OpInt16 Op = "Int16"
	OpInt32 Op = "Int32"
	OpInt64 Op = "Int64"

	OpUint   Op = "Uint"
	OpUint8  Op = "Uint8"
	OpUint16 Op = "Uint16"
	OpUint32 Op = "Uint32"
	OpUint64 Op = "Uint64"

	OpFloat32 Op = "Float32"
	OpFloat64 Op = "Float64"

	OpString  Op = "String"
	OpBytes   Op = "Bytes"
	OpNil     Op = "Nil"
	OpVariant Op = "Variant"

	OpSeqBegin    Op = "SeqBegin"
	OpMapBegin    Op = "MapBegin"
	OpStructBegin Op = "StructBegin"
	OpTupleBegin  Op = "TupleBegin"
	OpField       Op = "Field"
	OpEnd         Op = "End"
)

// Event 是一次记录下来的序列化调用；标量的宽度与取值被原样保留。
type Event struct {
	Op    Op
	Value any    `json:",omitempty"`
	Name  string `json:",omitempty"`
	Len   int    `json:",omitempty"`
}

// 以下构造函数用于在测试里紧凑地书写期望的调用序列。

func Bool(v bool) Event       { return Event{Op: OpBool, Value: v} }
func Int(v int) Event         { return Event{Op: OpInt, Value: v} }
func Int8(v int8) Event       { return Event{Op: OpInt8, Value: v} }
func Int16(v int16) Event     { return Event{Op: OpInt16, Value: v} }
func Int32(v int32) Event     { return Event{Op: OpInt32, Value: v} }
func Int64(v int64) Event     { return Event{Op: OpInt64, Value: v} }
func Uint(v uint) Event       { return Event{Op: OpUint, Value: v} }
func Uint8(v uint8) Event     { return Event{Op: OpUint8, Value: v} }
func Uint16(v uint16) Event   { return Event{Op: OpUint16, Value: v} }
func Uint32(v uint32) Event   { return Event{Op: OpUint32, Value: v} }
func Uint64(v uint64) Event   { return Event{Op: OpUint64, Value: v} }
func Float32(v float32) Event { return Event{Op: OpFloat32, Value: v} }
func Float64(v float64) Event { return Event{Op: OpFloat64, Value: v} }
func Str(v string) Event      { return Event{Op: OpString, Value: v} }
func Bytes(v []byte) Event    { return Event{Op: OpBytes, Value: v} }
func Nil() Event              { return Event{Op: OpNil} }
func Variant(name string) Event {
	return Event{Op: OpVariant, Name: name}
}
func SeqBegin(length int) Event   { return Event{Op: OpSeqBegin, Len: length} }
func MapBegin(length int) Event   { return Event{Op: OpMapBegin, Len: length} }
func TupleBegin(length int) Event { return Event{Op: OpTupleBegin, Len: length} }
func StructBegin(name string, numFields int) Event {
	return Event{Op: OpStructBegin, Name: name, Len: numFields}
}
func Field(name string) Event { return Event{Op: OpField, Name: name} }
func End() Event              { return Event{Op: OpEnd} }

// Dump 把事件流渲染为缩进 JSON，用于测试失败时的输出。
func Dump(events []Event) string {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}
