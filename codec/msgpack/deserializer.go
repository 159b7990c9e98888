package msgpack

import (
	"bytes"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"golang.org/x/exp/slices"

	"github.com/sea-grass/getty/de"
	"github.com/sea-grass/getty/pkg/merr"
)

// Deserializer 按 MessagePack 的自描述类型码驱动访问者。
type Deserializer struct {
	dec            *msgpack.Decoder
	discardUnknown bool
}

var _ de.Deserializer = (*Deserializer)(nil)

// NewDeserializer 创建从 data 读入的 MessagePack 反序列化器。
func NewDeserializer(data []byte, opts ...Option) *Deserializer {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return newDeserializer(data, o.discardUnknown)
}

func newDeserializer(data []byte, discardUnknown bool) *Deserializer {
	return &Deserializer{
		dec:            msgpack.NewDecoder(bytes.NewReader(data)),
		discardUnknown: discardUnknown,
	}
}

func wrapReadErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return merr.WrapErrUnexpectedEnd("msgpack: input exhausted")
	}
	return errors.Wrap(err, "msgpack: read")
}

func (d *Deserializer) DeserializeAny(v de.Visitor) (any, error) {
	c, err := d.dec.PeekCode()
	if err != nil {
		return nil, wrapReadErr(err)
	}

	switch {
	case c == msgpcode.Nil:
		if err := d.dec.DecodeNil(); err != nil {
			return nil, wrapReadErr(err)
		}
		return v.VisitNil()

	case c == msgpcode.True, c == msgpcode.False:
		b, err := d.dec.DecodeBool()
		if err != nil {
			return nil, wrapReadErr(err)
		}
		return v.VisitBool(b)

	case msgpcode.IsFixedNum(c),
		c == msgpcode.Int8, c == msgpcode.Int16, c == msgpcode.Int32, c == msgpcode.Int64:
		i, err := d.dec.DecodeInt64()
		if err != nil {
			return nil, wrapReadErr(err)
		}
		return v.VisitInt(i)

	case c == msgpcode.Uint8, c == msgpcode.Uint16, c == msgpcode.Uint32, c == msgpcode.Uint64:
		u, err := d.dec.DecodeUint64()
		if err != nil {
			return nil, wrapReadErr(err)
		}
		return v.VisitUint(u)

	case c == msgpcode.Float:
		f, err := d.dec.DecodeFloat32()
		if err != nil {
			return nil, wrapReadErr(err)
		}
		return v.VisitFloat(float64(f))

	case c == msgpcode.Double:
		f, err := d.dec.DecodeFloat64()
		if err != nil {
			return nil, wrapReadErr(err)
		}
		return v.VisitFloat(f)

	case msgpcode.IsString(c):
		s, err := d.dec.DecodeString()
		if err != nil {
			return nil, wrapReadErr(err)
		}
		return v.VisitString(s)

	case msgpcode.IsBin(c):
		b, err := d.dec.DecodeBytes()
		if err != nil {
			return nil, wrapReadErr(err)
		}
		return v.VisitBytes(b)

	case msgpcode.IsFixedArray(c), c == msgpcode.Array16, c == msgpcode.Array32:
		l, err := d.dec.DecodeArrayLen()
		if err != nil {
			return nil, wrapReadErr(err)
		}
		return v.VisitSeq(&seqAccess{d: d, remaining: l})

	case msgpcode.IsFixedMap(c), c == msgpcode.Map16, c == msgpcode.Map32:
		l, err := d.dec.DecodeMapLen()
		if err != nil {
			return nil, wrapReadErr(err)
		}
		return v.VisitMap(&mapAccess{d: d, remaining: l})

	default:
		return nil, merr.WrapErrInvalidValue("msgpack value", strconv.FormatUint(uint64(c), 16),
			"msgpack: unsupported type code")
	}
}

func (d *Deserializer) DeserializeBool(v de.Visitor) (any, error)   { return d.DeserializeAny(v) }
func (d *Deserializer) DeserializeInt(v de.Visitor) (any, error)    { return d.DeserializeAny(v) }
func (d *Deserializer) DeserializeFloat(v de.Visitor) (any, error)  { return d.DeserializeAny(v) }
func (d *Deserializer) DeserializeString(v de.Visitor) (any, error) { return d.DeserializeAny(v) }
func (d *Deserializer) DeserializeBytes(v de.Visitor) (any, error)  { return d.DeserializeAny(v) }

func (d *Deserializer) DeserializeOptional(v de.Visitor) (any, error) {
	c, err := d.dec.PeekCode()
	if err != nil {
		return nil, wrapReadErr(err)
	}
	if c == msgpcode.Nil {
		if err := d.dec.DecodeNil(); err != nil {
			return nil, wrapReadErr(err)
		}
		return v.VisitNil()
	}
	return v.VisitSome(d)
}

func (d *Deserializer) DeserializeSeq(v de.Visitor) (any, error) { return d.DeserializeAny(v) }
func (d *Deserializer) DeserializeMap(v de.Visitor) (any, error) { return d.DeserializeAny(v) }

func (d *Deserializer) DeserializeStruct(name string, fields []string, v de.Visitor) (any, error) {
	c, err := d.dec.PeekCode()
	if err != nil {
		return nil, wrapReadErr(err)
	}
	if !msgpcode.IsFixedMap(c) && c != msgpcode.Map16 && c != msgpcode.Map32 {
		return d.DeserializeAny(v)
	}

	l, err := d.dec.DecodeMapLen()
	if err != nil {
		return nil, wrapReadErr(err)
	}
	return v.VisitMap(&mapAccess{
		d:         d,
		remaining: l,
		fields:    fields,
		filter:    d.discardUnknown,
	})
}

func (d *Deserializer) DeserializeTuple(length int, v de.Visitor) (any, error) {
	return d.DeserializeAny(v)
}

func (d *Deserializer) DeserializeVariant(v de.Visitor) (any, error) {
	c, err := d.dec.PeekCode()
	if err != nil {
		return nil, wrapReadErr(err)
	}
	if !msgpcode.IsString(c) {
		return d.DeserializeAny(v)
	}

	s, err := d.dec.DecodeString()
	if err != nil {
		return nil, wrapReadErr(err)
	}
	return v.VisitVariant(s)
}

type seqAccess struct {
	d         *Deserializer
	remaining int
}

var _ de.SeqAccess = (*seqAccess)(nil)

func (a *seqAccess) NextElement(seed de.DeserializeFunc) (any, bool, error) {
	if a.remaining <= 0 {
		return nil, false, nil
	}
	a.remaining--

	res, err := seed(a.d)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

type mapAccess struct {
	d         *Deserializer
	remaining int
	fields    []string
	filter    bool
}

var _ de.MapAccess = (*mapAccess)(nil)

func (a *mapAccess) NextKey(seed de.DeserializeFunc) (any, bool, error) {
	for {
		if a.remaining <= 0 {
			return nil, false, nil
		}
		a.remaining--

		if !a.filter {
			res, err := seed(a.d)
			if err != nil {
				return nil, false, err
			}
			return res, true, nil
		}

		// 过滤模式下键必须先读出才能比对，再经由独立输入源交给种子。
		key, err := a.d.dec.DecodeString()
		if err != nil {
			return nil, false, wrapReadErr(err)
		}
		if !slices.Contains(a.fields, key) {
			if err := a.d.dec.Skip(); err != nil {
				return nil, false, wrapReadErr(err)
			}
			continue
		}

		res, err := seed(&keyDeserializer{value: key})
		if err != nil {
			return nil, false, err
		}
		return res, true, nil
	}
}

func (a *mapAccess) NextValue(seed de.DeserializeFunc) (any, error) {
	return seed(a.d)
}

// keyDeserializer 把已读出的字段名当作独立输入源交给键的解码种子。
type keyDeserializer struct {
	value string
}

var _ de.Deserializer = (*keyDeserializer)(nil)

func (k *keyDeserializer) DeserializeAny(v de.Visitor) (any, error) {
	return v.VisitString(k.value)
}

func (k *keyDeserializer) DeserializeString(v de.Visitor) (any, error) {
	return v.VisitString(k.value)
}

func (k *keyDeserializer) DeserializeVariant(v de.Visitor) (any, error) {
	return v.VisitVariant(k.value)
}

func (k *keyDeserializer) DeserializeBool(v de.Visitor) (any, error)     { return k.DeserializeAny(v) }
func (k *keyDeserializer) DeserializeInt(v de.Visitor) (any, error)      { return k.DeserializeAny(v) }
func (k *keyDeserializer) DeserializeFloat(v de.Visitor) (any, error)    { return k.DeserializeAny(v) }
func (k *keyDeserializer) DeserializeBytes(v de.Visitor) (any, error)    { return k.DeserializeAny(v) }
func (k *keyDeserializer) DeserializeOptional(v de.Visitor) (any, error) { return k.DeserializeAny(v) }
func (k *keyDeserializer) DeserializeSeq(v de.Visitor) (any, error)      { return k.DeserializeAny(v) }
func (k *keyDeserializer) DeserializeMap(v de.Visitor) (any, error)      { return k.DeserializeAny(v) }

func (k *keyDeserializer) DeserializeStruct(name string, fields []string, v de.Visitor) (any, error) {
	return k.DeserializeAny(v)
}

func (k *keyDeserializer) DeserializeTuple(length int, v de.Visitor) (any, error) {
	return k.DeserializeAny(v)
}
