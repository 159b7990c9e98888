// Package msgpack 基于 vmihailenco/msgpack 实现 MessagePack 线上格式。
//
// 结构体编码为字段名到值的映射，元组与序列共用数组语法，
// 变体标签编码为字符串。MessagePack 的复合结构携带显式长度，
// 因此本格式拒绝长度未知的序列与映射。
package msgpack

import (
	"bytes"

	"github.com/sea-grass/getty/alloc"
	"github.com/sea-grass/getty/codec"
	"github.com/sea-grass/getty/de"
	"github.com/sea-grass/getty/ser"
)

// Name 是本格式的注册名。
const Name = "msgpack"

func init() {
	codec.Register(New())
}

type options struct {
	discardUnknown bool
	allocator      alloc.Allocator
}

type Option func(*options)

// WithDiscardUnknown 让解码端静默跳过目标结构体未声明的字段；
// 默认遇到未知字段即失败。
func WithDiscardUnknown() Option {
	return func(o *options) {
		o.discardUnknown = true
	}
}

// WithAllocator 指定解码期间字符串与字节缓冲使用的分配器。
func WithAllocator(a alloc.Allocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

// Codec 是 MessagePack 格式的编解码入口。
type Codec struct {
	opts options
}

var _ codec.Codec = (*Codec)(nil)

func New(opts ...Option) *Codec {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return &Codec{opts: o}
}

func (c *Codec) Name() string {
	return Name
}

func (c *Codec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	s := NewSerializer(&buf)
	if err := ser.Serialize(v, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Codec) Unmarshal(data []byte, v any) error {
	d := newDeserializer(data, c.opts.discardUnknown)
	return de.DeserializeInto(c.opts.allocator, v, d)
}
