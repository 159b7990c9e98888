// Package plan 预解析结构体类型的字段布局并按 reflect.Type 缓存，
// 供编码分发与解码双分发两侧复用。
package plan

import (
	"reflect"
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

// TagName 是字段重命名与跳过所使用的结构体标签键。
const TagName = "getty"

// Field 描述一个参与编解码的结构体字段。
type Field struct {
	// Name 为线上名称：优先取 getty 标签，否则为 Go 字段名。
	Name string
	// Index 为字段在结构体中的下标。
	Index int
	// Type 为字段类型。
	Type reflect.Type
}

// Plan 是一个结构体类型的完整字段布局。
type Plan struct {
	// Name 为结构体类型名；匿名结构体为空串。
	Name string
	// Fields 按声明顺序排列。
	Fields []Field

	byName map[string]int
}

// FieldNames 按声明顺序返回全部线上名称。
func (p *Plan) FieldNames() []string {
	return lo.Map(p.Fields, func(f Field, _ int) string { return f.Name })
}

// Lookup 按线上名称查找字段；第二个返回值表示是否存在。
func (p *Plan) Lookup(name string) (Field, bool) {
	i, ok := p.byName[name]
	if !ok {
		return Field{}, false
	}
	return p.Fields[i], true
}

// Position 按线上名称返回字段在 Fields 中的下标。
func (p *Plan) Position(name string) (int, bool) {
	i, ok := p.byName[name]
	return i, ok
}

var (
	cache sync.Map // reflect.Type -> *Plan
	group singleflight.Group
)

// For 返回 t 的字段布局。结果按类型缓存，并发构建会被去重。
// t 必须是 Kind 为 Struct 的类型。
func For(t reflect.Type) *Plan {
	if p, ok := cache.Load(t); ok {
		return p.(*Plan)
	}

	v, _, _ := group.Do(t.String(), func() (any, error) {
		if p, ok := cache.Load(t); ok {
			return p.(*Plan), nil
		}
		p := build(t)
		cache.Store(t, p)
		return p, nil
	})
	return v.(*Plan)
}

func build(t reflect.Type) *Plan {
	p := &Plan{
		Name:   t.Name(),
		byName: make(map[string]int),
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := f.Name
		if tag, ok := f.Tag.Lookup(TagName); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}

		p.byName[name] = len(p.Fields)
		p.Fields = append(p.Fields, Field{
			Name:  name,
			Index: i,
			Type:  f.Type,
		})
	}

	return p
}
