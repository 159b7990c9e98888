package msgpack

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/sea-grass/getty/pkg/merr"
	"github.com/sea-grass/getty/ser"
)

// Serializer 把编码分发写成 MessagePack 字节流。
//
// 整数统一走最短编码，宽度信息不保留在线上；
// 解码端按目标类型重新收窄并做溢出检查。
type Serializer struct {
	enc *msgpack.Encoder
}

var _ ser.Serializer = (*Serializer)(nil)

// NewSerializer 创建向 w 写出的 MessagePack 序列化器。
func NewSerializer(w io.Writer) *Serializer {
	return &Serializer{
		enc: msgpack.NewEncoder(w),
	}
}

func (s *Serializer) SerializeBool(v bool) error {
	return s.enc.EncodeBool(v)
}

func (s *Serializer) SerializeInt(v int) error   { return s.enc.EncodeInt(int64(v)) }
func (s *Serializer) SerializeInt8(v int8) error { return s.enc.EncodeInt(int64(v)) }
func (s *Serializer) SerializeInt16(v int16) error {
	return s.enc.EncodeInt(int64(v))
}
func (s *Serializer) SerializeInt32(v int32) error {
	return s.enc.EncodeInt(int64(v))
}
func (s *Serializer) SerializeInt64(v int64) error { return s.enc.EncodeInt(v) }

func (s *Serializer) SerializeUint(v uint) error   { return s.enc.EncodeUint(uint64(v)) }
func (s *Serializer) SerializeUint8(v uint8) error { return s.enc.EncodeUint(uint64(v)) }
func (s *Serializer) SerializeUint16(v uint16) error {
	return s.enc.EncodeUint(uint64(v))
}
func (s *Serializer) SerializeUint32(v uint32) error {
	return s.enc.EncodeUint(uint64(v))
}
func (s *Serializer) SerializeUint64(v uint64) error { return s.enc.EncodeUint(v) }

func (s *Serializer) SerializeFloat32(v float32) error {
	return s.enc.EncodeFloat32(v)
}

func (s *Serializer) SerializeFloat64(v float64) error {
	return s.enc.EncodeFloat64(v)
}

func (s *Serializer) SerializeString(v string) error {
	return s.enc.EncodeString(v)
}

func (s *Serializer) SerializeBytes(v []byte) error {
	return s.enc.EncodeBytes(v)
}

func (s *Serializer) SerializeNil() error {
	return s.enc.EncodeNil()
}

// SerializeVariant 把变体标签编码为字符串。
func (s *Serializer) SerializeVariant(name string) error {
	return s.enc.EncodeString(name)
}

func (s *Serializer) SerializeSeq(length int) (ser.SeqSerializer, error) {
	if length < 0 {
		return nil, merr.WrapErrLengthRequired(Name, "sequence")
	}
	if err := s.enc.EncodeArrayLen(length); err != nil {
		return nil, err
	}
	return &compound{s: s}, nil
}

// SerializeTuple 与序列共用数组语法。
func (s *Serializer) SerializeTuple(length int) (ser.TupleSerializer, error) {
	return s.SerializeSeq(length)
}

func (s *Serializer) SerializeMap(length int) (ser.MapSerializer, error) {
	if length < 0 {
		return nil, merr.WrapErrLengthRequired(Name, "map")
	}
	if err := s.enc.EncodeMapLen(length); err != nil {
		return nil, err
	}
	return &compound{s: s}, nil
}

// SerializeStruct 把结构体编码为字段名到值的映射。
func (s *Serializer) SerializeStruct(name string, numFields int) (ser.StructSerializer, error) {
	if err := s.enc.EncodeMapLen(numFields); err != nil {
		return nil, err
	}
	return &compound{s: s}, nil
}

// compound 服务全部四种复合会话：MessagePack 的长度前缀写在开头，
// 其后元素、键值对与字段都是平铺的值序列。
type compound struct {
	s    *Serializer
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
		panic("msgpack: compound serializer used after End")
	}
}

func (c *compound) SerializeElement(v any) error {
	c.check()
	return ser.Serialize(v, c.s)
}

func (c *compound) SerializeKey(k any) error {
	c.check()
	return ser.Serialize(k, c.s)
}

func (c *compound) SerializeValue(v any) error {
	c.check()
	return ser.Serialize(v, c.s)
}

func (c *compound) SerializeEntry(k, v any) error {
	if err := c.SerializeKey(k); err != nil {
		return err
	}
	return c.SerializeValue(v)
}

func (c *compound) SerializeField(name string, v any) error {
	c.check()
	if err := c.s.enc.EncodeString(name); err != nil {
		return err
	}
	return ser.Serialize(v, c.s)
}

func (c *compound) End() error {
	c.check()
	c.done = true
	return nil
}
