// Package json 基于 json-iterator 实现 JSON 线上格式。
//
// 序列化端把编码分发产生的调用序列写成 JSON 文本；反序列化端是自描述的,
// 按输入语法判定类别并驱动访问者。与 encoding/json 的约定保持一致:
// 字节串编码为 base64 字符串, 映射键编码为对象字段名。
package json

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"

	"github.com/sea-grass/getty/alloc"
	"github.com/sea-grass/getty/codec"
	"github.com/sea-grass/getty/de"
	"github.com/sea-grass/getty/ser"
)

// Name 是本格式的注册名。
const Name = "json"

func init() {
	codec.Register(New())
}

type options struct {
	indentStep     int
	discardUnknown bool
	allocator      alloc.Allocator
}

type Option func(*options)

// WithIndent 让编码输出按给定步长缩进；默认紧凑输出。
func WithIndent(step int) Option {
	return func(o *options) {
		o.indentStep = step
	}
}

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

// Codec 是 JSON 格式的编解码入口。
type Codec struct {
	api  jsoniter.API
	opts options
}

var _ codec.Codec = (*Codec)(nil)

func New(opts ...Option) *Codec {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := jsoniter.Config{
		IndentionStep: o.indentStep,
	}
	return &Codec{
		api:  cfg.Froze(),
		opts: o,
	}
}

func (c *Codec) Name() string {
	return Name
}

func (c *Codec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	s := newSerializer(c.api, &buf)
	if err := ser.Serialize(v, s); err != nil {
		return nil, err
	}
	if err := s.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Codec) Unmarshal(data []byte, v any) error {
	d := newDeserializer(data, c.opts.discardUnknown)
	return de.DeserializeInto(c.opts.allocator, v, d)
}
