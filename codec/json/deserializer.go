package json

import (
	"encoding/base64"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/exp/slices"

	"github.com/sea-grass/getty/de"
	"github.com/sea-grass/getty/pkg/merr"
)

// Deserializer 按 JSON 的自描述语法驱动访问者。
//
// 类型提示大多被忽略：输入语法已经决定了类别。例外是字节串
// （base64 字符串）与可选值（null 探测），它们需要提示才能区分。
type Deserializer struct {
	iter           *jsoniter.Iterator
	discardUnknown bool
}

var _ de.Deserializer = (*Deserializer)(nil)

// NewDeserializer 创建从 data 读入的 JSON 反序列化器。
func NewDeserializer(data []byte, opts ...Option) *Deserializer {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return newDeserializer(data, o.discardUnknown)
}

func newDeserializer(data []byte, discardUnknown bool) *Deserializer {
	return &Deserializer{
		iter:           jsoniter.ParseBytes(jsoniter.ConfigDefault, data),
		discardUnknown: discardUnknown,
	}
}

func (d *Deserializer) readErr() error {
	switch err := d.iter.Error; err {
	case nil:
		return nil
	case io.EOF:
		return merr.WrapErrUnexpectedEnd("json: input exhausted")
	default:
		return errors.Wrap(err, "json: read")
	}
}

func (d *Deserializer) DeserializeAny(v de.Visitor) (any, error) {
	switch d.iter.WhatIsNext() {
	case jsoniter.BoolValue:
		b := d.iter.ReadBool()
		if err := d.readErr(); err != nil {
			return nil, err
		}
		return v.VisitBool(b)

	case jsoniter.NumberValue:
		return d.visitNumber(v)

	case jsoniter.StringValue:
		s := d.iter.ReadString()
		if err := d.readErr(); err != nil {
			return nil, err
		}
		return v.VisitString(s)

	case jsoniter.NilValue:
		d.iter.ReadNil()
		if err := d.readErr(); err != nil {
			return nil, err
		}
		return v.VisitNil()

	case jsoniter.ArrayValue:
		return v.VisitSeq(&seqAccess{d: d})

	case jsoniter.ObjectValue:
		entries, err := d.readObjectEntries()
		if err != nil {
			return nil, err
		}
		return v.VisitMap(&mapAccess{d: d, entries: entries})

	default:
		if err := d.readErr(); err != nil {
			return nil, err
		}
		return nil, merr.WrapErrInvalidValue(v.Expecting(), "malformed token", "json: unrecognized input")
	}
}

// objectEntry 暂存一个对象成员：键与原始值字节。
type objectEntry struct {
	key string
	raw []byte
}

// readObjectEntries 一次性读入对象的全部成员。
// jsoniter 的逐键游标用空字符串兼任“对象结束”信号，无法表达空键，
// 因此这里改用回调式读取，值以原始字节暂存、按条目回放。
func (d *Deserializer) readObjectEntries() ([]objectEntry, error) {
	var entries []objectEntry
	d.iter.ReadMapCB(func(it *jsoniter.Iterator, key string) bool {
		entries = append(entries, objectEntry{key: key, raw: it.SkipAndReturnBytes()})
		return true
	})
	if err := d.readErr(); err != nil {
		return nil, err
	}
	return entries, nil
}

// visitNumber 保守区分整数与浮点：无小数点与指数的字面量优先走整数。
func (d *Deserializer) visitNumber(v de.Visitor) (any, error) {
	num := d.iter.ReadNumber()
	if err := d.readErr(); err != nil {
		return nil, err
	}

	raw := num.String()
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := num.Int64(); err == nil {
			return v.VisitInt(i)
		}
		if u, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return v.VisitUint(u)
		}
	}

	f, err := num.Float64()
	if err != nil {
		return nil, merr.WrapErrInvalidValue("number", raw, "json: malformed number")
	}
	return v.VisitFloat(f)
}

func (d *Deserializer) DeserializeBool(v de.Visitor) (any, error)   { return d.DeserializeAny(v) }
func (d *Deserializer) DeserializeInt(v de.Visitor) (any, error)    { return d.DeserializeAny(v) }
func (d *Deserializer) DeserializeFloat(v de.Visitor) (any, error)  { return d.DeserializeAny(v) }
func (d *Deserializer) DeserializeString(v de.Visitor) (any, error) { return d.DeserializeAny(v) }

// DeserializeBytes 把 base64 字符串还原为字节串；其余语法回落到自描述路径。
func (d *Deserializer) DeserializeBytes(v de.Visitor) (any, error) {
	if d.iter.WhatIsNext() != jsoniter.StringValue {
		return d.DeserializeAny(v)
	}

	s := d.iter.ReadString()
	if err := d.readErr(); err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, merr.WrapErrInvalidValue("bytes", s, "json: invalid base64")
	}
	return v.VisitBytes(raw)
}

func (d *Deserializer) DeserializeOptional(v de.Visitor) (any, error) {
	if d.iter.WhatIsNext() == jsoniter.NilValue {
		d.iter.ReadNil()
		if err := d.readErr(); err != nil {
			return nil, err
		}
		return v.VisitNil()
	}
	return v.VisitSome(d)
}

func (d *Deserializer) DeserializeSeq(v de.Visitor) (any, error) { return d.DeserializeAny(v) }
func (d *Deserializer) DeserializeMap(v de.Visitor) (any, error) { return d.DeserializeAny(v) }

func (d *Deserializer) DeserializeStruct(name string, fields []string, v de.Visitor) (any, error) {
	if d.iter.WhatIsNext() != jsoniter.ObjectValue {
		return d.DeserializeAny(v)
	}
	entries, err := d.readObjectEntries()
	if err != nil {
		return nil, err
	}
	return v.VisitMap(&mapAccess{
		d:       d,
		entries: entries,
		fields:  fields,
		filter:  d.discardUnknown,
	})
}

func (d *Deserializer) DeserializeTuple(length int, v de.Visitor) (any, error) {
	return d.DeserializeAny(v)
}

func (d *Deserializer) DeserializeVariant(v de.Visitor) (any, error) {
	if d.iter.WhatIsNext() != jsoniter.StringValue {
		return d.DeserializeAny(v)
	}

	s := d.iter.ReadString()
	if err := d.readErr(); err != nil {
		return nil, err
	}
	return v.VisitVariant(s)
}

type seqAccess struct {
	d *Deserializer
}

var _ de.SeqAccess = (*seqAccess)(nil)

func (a *seqAccess) NextElement(seed de.DeserializeFunc) (any, bool, error) {
	if !a.d.iter.ReadArray() {
		if err := a.d.readErr(); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	res, err := seed(a.d)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

type mapAccess struct {
	d       *Deserializer
	entries []objectEntry
	pos     int
	fields  []string
	filter  bool
}

var _ de.MapAccess = (*mapAccess)(nil)

func (a *mapAccess) NextKey(seed de.DeserializeFunc) (any, bool, error) {
	for a.pos < len(a.entries) {
		e := a.entries[a.pos]
		if a.filter && !slices.Contains(a.fields, e.key) {
			a.pos++
			continue
		}

		res, err := seed(&keyDeserializer{value: e.key})
		if err != nil {
			return nil, false, err
		}
		return res, true, nil
	}
	return nil, false, nil
}

func (a *mapAccess) NextValue(seed de.DeserializeFunc) (any, error) {
	e := a.entries[a.pos]
	a.pos++
	return seed(newDeserializer(e.raw, a.d.discardUnknown))
}

// keyDeserializer 把一个对象字段名当作独立输入源交给键的解码种子，
// 必要时把字符串形态的键还原为数值。
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

func (k *keyDeserializer) DeserializeBool(v de.Visitor) (any, error) {
	b, err := strconv.ParseBool(k.value)
	if err != nil {
		return nil, merr.WrapErrInvalidValue("bool key", k.value, "json: malformed key")
	}
	return v.VisitBool(b)
}

func (k *keyDeserializer) DeserializeInt(v de.Visitor) (any, error) {
	if i, err := strconv.ParseInt(k.value, 10, 64); err == nil {
		return v.VisitInt(i)
	}
	if u, err := strconv.ParseUint(k.value, 10, 64); err == nil {
		return v.VisitUint(u)
	}
	return nil, merr.WrapErrInvalidValue("integer key", k.value, "json: malformed key")
}

func (k *keyDeserializer) DeserializeFloat(v de.Visitor) (any, error) {
	f, err := strconv.ParseFloat(k.value, 64)
	if err != nil {
		return nil, merr.WrapErrInvalidValue("float key", k.value, "json: malformed key")
	}
	return v.VisitFloat(f)
}

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
