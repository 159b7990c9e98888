package json

import (
	"encoding/base64"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/sea-grass/getty/pkg/merr"
	"github.com/sea-grass/getty/ser"
)

// Serializer 把编码分发写成 JSON 文本。
//
// 输出经 jsoniter.Stream 缓冲，调用方在整个值编码完成后调用 Flush。
type Serializer struct {
	stream *jsoniter.Stream
}

var _ ser.Serializer = (*Serializer)(nil)

// NewSerializer 创建向 w 写出紧凑 JSON 的序列化器。
func NewSerializer(w io.Writer) *Serializer {
	return newSerializer(jsoniter.ConfigDefault, w)
}

func newSerializer(api jsoniter.API, w io.Writer) *Serializer {
	return &Serializer{
		stream: jsoniter.NewStream(api, w, 512),
	}
}

// Flush 将缓冲内容写入底层 writer。
func (s *Serializer) Flush() error {
	s.stream.Flush()
	return s.err()
}

func (s *Serializer) err() error {
	if s.stream.Error != nil {
		return errors.Wrap(s.stream.Error, "json: write")
	}
	return nil
}

func (s *Serializer) SerializeBool(v bool) error {
	s.stream.WriteBool(v)
	return s.err()
}

func (s *Serializer) SerializeInt(v int) error {
	s.stream.WriteInt(v)
	return s.err()
}

func (s *Serializer) SerializeInt8(v int8) error {
	s.stream.WriteInt8(v)
	return s.err()
}

func (s *Serializer) SerializeInt16(v int16) error {
	s.stream.WriteInt16(v)
	return s.err()
}

func (s *Serializer) SerializeInt32(v int32) error {
	s.stream.WriteInt32(v)
	return s.err()
}

func (s *Serializer) SerializeInt64(v int64) error {
	s.stream.WriteInt64(v)
	return s.err()
}

func (s *Serializer) SerializeUint(v uint) error {
	s.stream.WriteUint(v)
	return s.err()
}

func (s *Serializer) SerializeUint8(v uint8) error {
	s.stream.WriteUint8(v)
	return s.err()
}

func (s *Serializer) SerializeUint16(v uint16) error {
	s.stream.WriteUint16(v)
	return s.err()
}

func (s *Serializer) SerializeUint32(v uint32) error {
	s.stream.WriteUint32(v)
	return s.err()
}

func (s *Serializer) SerializeUint64(v uint64) error {
	s.stream.WriteUint64(v)
	return s.err()
}

func (s *Serializer) SerializeFloat32(v float32) error {
	s.stream.WriteFloat32(v)
	return s.err()
}

func (s *Serializer) SerializeFloat64(v float64) error {
	s.stream.WriteFloat64(v)
	return s.err()
}

func (s *Serializer) SerializeString(v string) error {
	s.stream.WriteString(v)
	return s.err()
}

// SerializeBytes 按 encoding/json 的约定把字节串编码为 base64 字符串。
func (s *Serializer) SerializeBytes(v []byte) error {
	s.stream.WriteString(base64.StdEncoding.EncodeToString(v))
	return s.err()
}

func (s *Serializer) SerializeNil() error {
	s.stream.WriteNil()
	return s.err()
}

// SerializeVariant 把变体标签编码为 JSON 字符串。
func (s *Serializer) SerializeVariant(name string) error {
	s.stream.WriteString(name)
	return s.err()
}

func (s *Serializer) SerializeSeq(length int) (ser.SeqSerializer, error) {
	s.stream.WriteArrayStart()
	if err := s.err(); err != nil {
		return nil, err
	}
	return &arraySerializer{s: s, first: true}, nil
}

// SerializeTuple 与序列共用 JSON 数组语法。
func (s *Serializer) SerializeTuple(length int) (ser.TupleSerializer, error) {
	return s.SerializeSeq(length)
}

func (s *Serializer) SerializeMap(length int) (ser.MapSerializer, error) {
	s.stream.WriteObjectStart()
	if err := s.err(); err != nil {
		return nil, err
	}
	return &objectSerializer{s: s, first: true}, nil
}

func (s *Serializer) SerializeStruct(name string, numFields int) (ser.StructSerializer, error) {
	s.stream.WriteObjectStart()
	if err := s.err(); err != nil {
		return nil, err
	}
	return &structSerializer{s: s, first: true}, nil
}

type arraySerializer struct {
	s     *Serializer
	first bool
	done  bool
}

var (
	_ ser.SeqSerializer   = (*arraySerializer)(nil)
	_ ser.TupleSerializer = (*arraySerializer)(nil)
)

func (a *arraySerializer) SerializeElement(v any) error {
	a.check()
	if !a.first {
		a.s.stream.WriteMore()
	}
	a.first = false
	return ser.Serialize(v, a.s)
}

func (a *arraySerializer) End() error {
	a.check()
	a.done = true
	a.s.stream.WriteArrayEnd()
	return a.s.err()
}

func (a *arraySerializer) check() {
	if a.done {
		panic("json: compound serializer used after End")
	}
}

type objectSerializer struct {
	s     *Serializer
	first bool
	done  bool
}

var _ ser.MapSerializer = (*objectSerializer)(nil)

func (o *objectSerializer) SerializeKey(k any) error {
	o.check()
	if !o.first {
		o.s.stream.WriteMore()
	}
	o.first = false
	return ser.Serialize(k, &keySerializer{s: o.s})
}

func (o *objectSerializer) SerializeValue(v any) error {
	o.check()
	return ser.Serialize(v, o.s)
}

func (o *objectSerializer) SerializeEntry(k, v any) error {
	if err := o.SerializeKey(k); err != nil {
		return err
	}
	return o.SerializeValue(v)
}

func (o *objectSerializer) End() error {
	o.check()
	o.done = true
	o.s.stream.WriteObjectEnd()
	return o.s.err()
}

func (o *objectSerializer) check() {
	if o.done {
		panic("json: compound serializer used after End")
	}
}

type structSerializer struct {
	s     *Serializer
	first bool
	done  bool
}

var _ ser.StructSerializer = (*structSerializer)(nil)

func (t *structSerializer) SerializeField(name string, v any) error {
	if t.done {
		panic("json: compound serializer used after End")
	}
	if !t.first {
		t.s.stream.WriteMore()
	}
	t.first = false
	t.s.stream.WriteObjectField(name)
	if err := t.s.err(); err != nil {
		return err
	}
	return ser.Serialize(v, t.s)
}

func (t *structSerializer) End() error {
	if t.done {
		panic("json: compound serializer used after End")
	}
	t.done = true
	t.s.stream.WriteObjectEnd()
	return t.s.err()
}

// keySerializer 把映射键编码为对象字段名。
//
// JSON 对象的键只能是字符串，因此这里只接受字符串、整数与变体标签，
// 其余类别一律拒绝。
type keySerializer struct {
	s *Serializer
}

var _ ser.Serializer = (*keySerializer)(nil)

func (k *keySerializer) field(name string) error {
	k.s.stream.WriteObjectField(name)
	return k.s.err()
}

func (k *keySerializer) SerializeString(v string) error {
	return k.field(v)
}

func (k *keySerializer) SerializeVariant(name string) error {
	return k.field(name)
}

func (k *keySerializer) SerializeInt(v int) error   { return k.field(strconv.FormatInt(int64(v), 10)) }
func (k *keySerializer) SerializeInt8(v int8) error { return k.field(strconv.FormatInt(int64(v), 10)) }
func (k *keySerializer) SerializeInt16(v int16) error {
	return k.field(strconv.FormatInt(int64(v), 10))
}
func (k *keySerializer) SerializeInt32(v int32) error {
	return k.field(strconv.FormatInt(int64(v), 10))
}
func (k *keySerializer) SerializeInt64(v int64) error { return k.field(strconv.FormatInt(v, 10)) }

func (k *keySerializer) SerializeUint(v uint) error { return k.field(strconv.FormatUint(uint64(v), 10)) }
func (k *keySerializer) SerializeUint8(v uint8) error {
	return k.field(strconv.FormatUint(uint64(v), 10))
}
func (k *keySerializer) SerializeUint16(v uint16) error {
	return k.field(strconv.FormatUint(uint64(v), 10))
}
func (k *keySerializer) SerializeUint32(v uint32) error {
	return k.field(strconv.FormatUint(uint64(v), 10))
}
func (k *keySerializer) SerializeUint64(v uint64) error { return k.field(strconv.FormatUint(v, 10)) }

func (k *keySerializer) SerializeBool(v bool) error {
	return merr.WrapErrUnsupportedType("bool", "json object key")
}

func (k *keySerializer) SerializeFloat32(v float32) error {
	return merr.WrapErrUnsupportedType("float32", "json object key")
}

func (k *keySerializer) SerializeFloat64(v float64) error {
	return merr.WrapErrUnsupportedType("float64", "json object key")
}

func (k *keySerializer) SerializeBytes(v []byte) error {
	return merr.WrapErrUnsupportedType("bytes", "json object key")
}

func (k *keySerializer) SerializeNil() error {
	return merr.WrapErrUnsupportedType("nil", "json object key")
}

func (k *keySerializer) SerializeSeq(length int) (ser.SeqSerializer, error) {
	return nil, merr.WrapErrUnsupportedType("sequence", "json object key")
}

func (k *keySerializer) SerializeMap(length int) (ser.MapSerializer, error) {
	return nil, merr.WrapErrUnsupportedType("map", "json object key")
}

func (k *keySerializer) SerializeStruct(name string, numFields int) (ser.StructSerializer, error) {
	return nil, merr.WrapErrUnsupportedType("struct", "json object key")
}

func (k *keySerializer) SerializeTuple(length int) (ser.TupleSerializer, error) {
	return nil, merr.WrapErrUnsupportedType("tuple", "json object key")
}
