package gettytest

import (
	"github.com/sea-grass/getty/ser"
)

// Recorder 是参考格式的序列化端：把每次契约调用记录为一个事件。
type Recorder struct {
	events []Event
}

var _ ser.Serializer = (*Recorder)(nil)

// NewRecorder 创建一个空的 Recorder。
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Events 返回已记录的调用序列。
func (r *Recorder) Events() []Event {
	return r.events
}

// Source 基于已记录的事件流构造回放端。
func (r *Recorder) Source() *Source {
	return NewSource(r.events)
}

// Reset 清空已记录的事件。
func (r *Recorder) Reset() {
	r.events = r.events[:0]
}

// String 渲染事件流，便于测试失败时对照。
func (r *Recorder) String() string {
	return Dump(r.events)
}

func (r *Recorder) emit(e Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) SerializeBool(v bool) error { return r.emit(Bool(v)) }

func (r *Recorder) SerializeInt(v int) error     { return r.emit(Int(v)) }
func (r *Recorder) SerializeInt8(v int8) error   { return r.emit(Int8(v)) }
func (r *Recorder) SerializeInt16(v int16) error { return r.emit(Int16(v)) }
func (r *Recorder) SerializeInt32(v int32) error { return r.emit(Int32(v)) }
func (r *Recorder) SerializeInt64(v int64) error { return r.emit(Int64(v)) }

func (r *Recorder) SerializeUint(v uint) error     { return r.emit(Uint(v)) }
func (r *Recorder) SerializeUint8(v uint8) error   { return r.emit(Uint8(v)) }
func (r *Recorder) SerializeUint16(v uint16) error { return r.emit(Uint16(v)) }
func (r *Recorder) SerializeUint32(v uint32) error { return r.emit(Uint32(v)) }
func (r *Recorder) SerializeUint64(v uint64) error { return r.emit(Uint64(v)) }

func (r *Recorder) SerializeFloat32(v float32) error { return r.emit(Float32(v)) }
func (r *Recorder) SerializeFloat64(v float64) error { return r.emit(Float64(v)) }

func (r *Recorder) SerializeString(v string) error { return r.emit(Str(v)) }

func (r *Recorder) SerializeBytes(v []byte) error {
	// 拷贝一份，避免记录到调用方之后还会改动的内存。
	b := make([]byte, len(v))
	copy(b, v)
	return r.emit(Bytes(b))
}

func (r *Recorder) SerializeNil() error { return r.emit(Nil()) }

func (r *Recorder) SerializeVariant(name string) error { return r.emit(Variant(name)) }

func (r *Recorder) SerializeSeq(length int) (ser.SeqSerializer, error) {
	if err := r.emit(SeqBegin(length)); err != nil {
		return nil, err
	}
	return &compound{r: r}, nil
}

func (r *Recorder) SerializeMap(length int) (ser.MapSerializer, error) {
	if err := r.emit(MapBegin(length)); err != nil {
		return nil, err
	}
	return &compound{r: r}, nil
}

func (r *Recorder) SerializeStruct(name string, numFields int) (ser.StructSerializer, error) {
	if err := r.emit(StructBegin(name, numFields)); err != nil {
		return nil, err
	}
	return &compound{r: r}, nil
}

func (r *Recorder) SerializeTuple(length int) (ser.TupleSerializer, error) {
	if err := r.emit(TupleBegin(length)); err != nil {
		return nil, err
	}
	return &compound{r: r}, nil
}

// compound 同时充当四种复合会话；End 之后继续调用属于使用方错误，
// 参考格式选择直接 panic 暴露问题。
type compound struct {
	r    *Recorder
	done bool
}

var (
	_ ser.SeqSerializer    = (*compound)(nil)
	_ ser.TupleSerializer  = (*compound)(nil)
	_ ser.MapSerializer    = (*compound)(nil)
	_ ser.StructSerializer = (*compound)(nil)
)

func (c *compound) check() {
	if c.done {
		panic("gettytest: compound serializer used after End")
	}
}

func (c *compound) SerializeElement(v any) error {
	c.check()
	return ser.Serialize(v, c.r)
}

func (c *compound) SerializeKey(k any) error {
	c.check()
	return ser.Serialize(k, c.r)
}

func (c *compound) SerializeValue(v any) error {
	c.check()
	return ser.Serialize(v, c.r)
}

func (c *compound) SerializeEntry(k, v any) error {
	if err := c.SerializeKey(k); err != nil {
		return err
	}
	return c.SerializeValue(v)
}

func (c *compound) SerializeField(name string, v any) error {
	c.check()
	if err := c.r.emit(Field(name)); err != nil {
		return err
	}
	return ser.Serialize(v, c.r)
}

func (c *compound) End() error {
	c.check()
	c.done = true
	return c.r.emit(End())
}
