package de

import (
	"math"
	"reflect"
	"unsafe"

	"github.com/sea-grass/getty/alloc"
	"github.com/sea-grass/getty/internal/plan"
	"github.com/sea-grass/getty/pkg/merr"
)

// maxDepth 是解码嵌套深度上限，用于在自引用类型上避免无界递归。
const maxDepth = 10_000

var (
	anyType                = reflect.TypeOf((*any)(nil)).Elem()
	stringType             = reflect.TypeOf("")
	unmarshalerType        = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	variantUnmarshalerType = reflect.TypeOf((*VariantUnmarshaler)(nil)).Elem()
)

// Deserialize 从 d 解码出一个 T。
//
// 解码期间所有有所有权的结果（字符串、字节序列的底层存储）都从 a 分配；
// a 为 nil 时退化为 GC 托管分配器。失败时，本次调用内产生的分配会在错误
// 返回前全部经 a 释放。
func Deserialize[T any](a alloc.Allocator, d Deserializer) (T, error) {
	var out T
	if err := DeserializeInto(a, &out, d); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// DeserializeInto 从 d 解码并写入 target 指向的值。
// target 必须是非 nil 指针。
func DeserializeInto(a alloc.Allocator, target any, d Deserializer) error {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return merr.WrapErrUnsupportedType(reflect.TypeOf(target), "target must be a non-nil pointer")
	}
	if a == nil {
		a = alloc.Go()
	}

	st := &state{scope: newScope(a)}
	res, err := deserializeValue(st, rv.Type().Elem(), d)
	if err != nil {
		st.scope.releaseFrom(0)
		return err
	}
	rv.Elem().Set(res)
	return nil
}

// state 贯穿一棵解码树：分配作用域与嵌套深度。
type state struct {
	scope *scope
	depth int
}

// seedFor 构造 rt 的条目解码种子。
func (st *state) seedFor(rt reflect.Type) DeserializeFunc {
	return func(d Deserializer) (any, error) {
		rv, err := deserializeValue(st, rt, d)
		if err != nil {
			return nil, err
		}
		return rv.Interface(), nil
	}
}

// deserializeValue 按目标类型选择 Deserializer 提示方法与对应访问者，
// 返回的值类型恒等于 rt。
func deserializeValue(st *state, rt reflect.Type, d Deserializer) (reflect.Value, error) {
	st.depth++
	defer func() { st.depth-- }()
	if st.depth > maxDepth {
		return reflect.Value{}, merr.WrapErrInvalidValue(rt.String(), st.depth, "nesting depth limit exceeded")
	}

	pt := reflect.PointerTo(rt)

	// 逃生舱口优先于所有结构规则。
	if pt.Implements(unmarshalerType) {
		nv := reflect.New(rt)
		if err := nv.Interface().(Unmarshaler).UnmarshalGetty(st.scope, d); err != nil {
			return reflect.Value{}, err
		}
		return nv.Elem(), nil
	}

	if pt.Implements(variantUnmarshalerType) {
		res, err := d.DeserializeVariant(variantVisitor{VisitorBase{Desc: rt.String()}, rt})
		return toValue(res, rt), err
	}

	switch rt.Kind() {
	case reflect.Bool:
		res, err := d.DeserializeBool(boolVisitor{VisitorBase{Desc: rt.String()}, rt})
		return toValue(res, rt), err

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		res, err := d.DeserializeInt(intVisitor{VisitorBase{Desc: rt.String()}, rt})
		return toValue(res, rt), err

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		res, err := d.DeserializeInt(uintVisitor{VisitorBase{Desc: rt.String()}, rt})
		return toValue(res, rt), err

	case reflect.Float32, reflect.Float64:
		res, err := d.DeserializeFloat(floatVisitor{VisitorBase{Desc: rt.String()}, rt})
		return toValue(res, rt), err

	case reflect.String:
		res, err := d.DeserializeString(stringVisitor{VisitorBase{Desc: rt.String()}, st, rt})
		return toValue(res, rt), err

	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			res, err := d.DeserializeBytes(bytesVisitor{VisitorBase{Desc: rt.String()}, st, rt})
			return toValue(res, rt), err
		}
		res, err := d.DeserializeSeq(seqVisitor{VisitorBase{Desc: rt.String()}, st, rt})
		return toValue(res, rt), err

	case reflect.Array:
		res, err := d.DeserializeTuple(rt.Len(), tupleVisitor{VisitorBase{Desc: rt.String()}, st, rt})
		return toValue(res, rt), err

	case reflect.Map:
		res, err := d.DeserializeMap(mapVisitor{VisitorBase{Desc: rt.String()}, st, rt})
		return toValue(res, rt), err

	case reflect.Struct:
		p := plan.For(rt)
		res, err := d.DeserializeStruct(p.Name, p.FieldNames(), structVisitor{VisitorBase{Desc: rt.String()}, st, rt, p})
		return toValue(res, rt), err

	case reflect.Pointer:
		res, err := d.DeserializeOptional(optionalVisitor{VisitorBase{Desc: rt.String()}, st, rt})
		return toValue(res, rt), err

	case reflect.Interface:
		if rt.NumMethod() == 0 {
			res, err := d.DeserializeAny(anyVisitor{VisitorBase{Desc: "any value"}, st})
			return toValue(res, rt), err
		}
		// 标签身份不在线上（见编码规则 6），非空接口目标无从还原。
		return reflect.Value{}, merr.WrapErrUnsupportedType(rt.String(), "non-empty interface target")

	default:
		return reflect.Value{}, merr.WrapErrUnsupportedType(rt.String())
	}
}

// toValue 把访问者产出包装为恰好 rt 类型的值；res 为 nil 时取零值。
func toValue(res any, rt reflect.Type) reflect.Value {
	out := reflect.New(rt).Elem()
	if res != nil {
		out.Set(reflect.ValueOf(res))
	}
	return out
}

type boolVisitor struct {
	VisitorBase
	rt reflect.Type
}

func (v boolVisitor) VisitBool(b bool) (any, error) {
	out := reflect.New(v.rt).Elem()
	out.SetBool(b)
	return out.Interface(), nil
}

type intVisitor struct {
	VisitorBase
	rt reflect.Type
}

func (v intVisitor) VisitInt(i int64) (any, error) {
	out := reflect.New(v.rt).Elem()
	if out.OverflowInt(i) {
		return nil, merr.WrapErrInvalidValue(v.rt.String(), i, "integer overflow")
	}
	out.SetInt(i)
	return out.Interface(), nil
}

func (v intVisitor) VisitUint(u uint64) (any, error) {
	if u > math.MaxInt64 {
		return nil, merr.WrapErrInvalidValue(v.rt.String(), u, "integer overflow")
	}
	return v.VisitInt(int64(u))
}

type uintVisitor struct {
	VisitorBase
	rt reflect.Type
}

func (v uintVisitor) VisitUint(u uint64) (any, error) {
	out := reflect.New(v.rt).Elem()
	if out.OverflowUint(u) {
		return nil, merr.WrapErrInvalidValue(v.rt.String(), u, "integer overflow")
	}
	out.SetUint(u)
	return out.Interface(), nil
}

func (v uintVisitor) VisitInt(i int64) (any, error) {
	if i < 0 {
		return nil, merr.WrapErrInvalidValue(v.rt.String(), i, "negative value for unsigned target")
	}
	return v.VisitUint(uint64(i))
}

type floatVisitor struct {
	VisitorBase
	rt reflect.Type
}

func (v floatVisitor) VisitFloat(f float64) (any, error) {
	out := reflect.New(v.rt).Elem()
	if out.OverflowFloat(f) {
		return nil, merr.WrapErrInvalidValue(v.rt.String(), f, "float overflow")
	}
	out.SetFloat(f)
	return out.Interface(), nil
}

func (v floatVisitor) VisitInt(i int64) (any, error) {
	return v.VisitFloat(float64(i))
}

func (v floatVisitor) VisitUint(u uint64) (any, error) {
	return v.VisitFloat(float64(u))
}

type stringVisitor struct {
	VisitorBase
	st *state
	rt reflect.Type
}

func (v stringVisitor) VisitString(s string) (any, error) {
	owned, err := v.st.ownString(s)
	if err != nil {
		return nil, err
	}
	out := reflect.New(v.rt).Elem()
	out.SetString(owned)
	return out.Interface(), nil
}

type bytesVisitor struct {
	VisitorBase
	st *state
	rt reflect.Type
}

func (v bytesVisitor) VisitBytes(b []byte) (any, error) {
	buf, err := v.st.scope.Allocate(len(b))
	if err != nil {
		return nil, err
	}
	copy(buf, b)
	out := reflect.New(v.rt).Elem()
	out.SetBytes(buf)
	return out.Interface(), nil
}

// ownString 把格式侧暂借的文本搬入分配器内存；
// 结果字符串与分配器内存别名，所有权随分配器移交调用方。
func (st *state) ownString(s string) (string, error) {
	if len(s) == 0 {
		return "", nil
	}
	buf, err := st.scope.Allocate(len(s))
	if err != nil {
		return "", err
	}
	copy(buf, s)
	return unsafe.String(unsafe.SliceData(buf), len(buf)), nil
}

type optionalVisitor struct {
	VisitorBase
	st *state
	rt reflect.Type
}

func (v optionalVisitor) VisitNil() (any, error) {
	return reflect.Zero(v.rt).Interface(), nil
}

func (v optionalVisitor) VisitSome(d Deserializer) (any, error) {
	inner, err := deserializeValue(v.st, v.rt.Elem(), d)
	if err != nil {
		return nil, err
	}
	p := reflect.New(v.rt.Elem())
	p.Elem().Set(inner)
	if p.Type() != v.rt {
		p = p.Convert(v.rt)
	}
	return p.Interface(), nil
}

type seqVisitor struct {
	VisitorBase
	st *state
	rt reflect.Type
}

func (v seqVisitor) VisitSeq(seq SeqAccess) (any, error) {
	mark := v.st.scope.mark()
	out := reflect.MakeSlice(v.rt, 0, 8)
	seed := v.st.seedFor(v.rt.Elem())

	for {
		e, ok, err := seq.NextElement(seed)
		if err != nil {
			v.st.scope.releaseFrom(mark)
			return nil, err
		}
		if !ok {
			break
		}
		out = reflect.Append(out, toValue(e, v.rt.Elem()))
	}
	return out.Interface(), nil
}

type tupleVisitor struct {
	VisitorBase
	st *state
	rt reflect.Type
}

func (v tupleVisitor) VisitSeq(seq SeqAccess) (any, error) {
	mark := v.st.scope.mark()
	out := reflect.New(v.rt).Elem()
	seed := v.st.seedFor(v.rt.Elem())
	length := v.rt.Len()

	for i := 0; ; i++ {
		e, ok, err := seq.NextElement(seed)
		if err != nil {
			v.st.scope.releaseFrom(mark)
			return nil, err
		}
		if !ok {
			if i < length {
				v.st.scope.releaseFrom(mark)
				return nil, merr.WrapErrMissingElement(i, length)
			}
			break
		}
		if i >= length {
			v.st.scope.releaseFrom(mark)
			return nil, merr.WrapErrInvalidValue(v.rt.String(), i, "sequence longer than tuple arity")
		}
		out.Index(i).Set(toValue(e, v.rt.Elem()))
	}
	return out.Interface(), nil
}

type mapVisitor struct {
	VisitorBase
	st *state
	rt reflect.Type
}

func (v mapVisitor) VisitMap(m MapAccess) (any, error) {
	mark := v.st.scope.mark()
	out := reflect.MakeMap(v.rt)
	keySeed := v.st.seedFor(v.rt.Key())
	valSeed := v.st.seedFor(v.rt.Elem())

	for {
		k, ok, err := m.NextKey(keySeed)
		if err != nil {
			v.st.scope.releaseFrom(mark)
			return nil, err
		}
		if !ok {
			break
		}
		val, err := m.NextValue(valSeed)
		if err != nil {
			v.st.scope.releaseFrom(mark)
			return nil, err
		}
		out.SetMapIndex(toValue(k, v.rt.Key()), toValue(val, v.rt.Elem()))
	}
	return out.Interface(), nil
}

type structVisitor struct {
	VisitorBase
	st *state
	rt reflect.Type
	p  *plan.Plan
}

func (v structVisitor) VisitMap(m MapAccess) (any, error) {
	mark := v.st.scope.mark()
	out := reflect.New(v.rt).Elem()
	seen := make([]bool, len(v.p.Fields))

	for {
		k, ok, err := m.NextKey(fieldNameSeed)
		if err != nil {
			v.st.scope.releaseFrom(mark)
			return nil, err
		}
		if !ok {
			break
		}
		name := k.(string)

		pos, found := v.p.Position(name)
		if !found {
			v.st.scope.releaseFrom(mark)
			return nil, merr.WrapErrUnknownField(v.p.Name, name)
		}
		f := v.p.Fields[pos]
		if seen[pos] {
			v.st.scope.releaseFrom(mark)
			return nil, merr.WrapErrInvalidValue(v.p.Name, name, "duplicate field")
		}

		val, err := m.NextValue(v.st.seedFor(f.Type))
		if err != nil {
			v.st.scope.releaseFrom(mark)
			return nil, err
		}
		out.Field(f.Index).Set(toValue(val, f.Type))
		seen[pos] = true
	}

	for i, s := range seen {
		if !s {
			v.st.scope.releaseFrom(mark)
			return nil, merr.WrapErrMissingField(v.p.Name, v.p.Fields[i].Name)
		}
	}
	return out.Interface(), nil
}

// fieldNameVisitor 解码结构体字段名；字段名仅用于查找，不经分配器。
type fieldNameVisitor struct {
	VisitorBase
}

func (v fieldNameVisitor) VisitString(s string) (any, error) {
	return s, nil
}

var fieldNameSeed DeserializeFunc = func(d Deserializer) (any, error) {
	return d.DeserializeString(fieldNameVisitor{VisitorBase{Desc: "field name"}})
}

type variantVisitor struct {
	VisitorBase
	rt reflect.Type
}

func (v variantVisitor) VisitVariant(name string) (any, error) {
	nv := reflect.New(v.rt)
	if err := nv.Interface().(VariantUnmarshaler).UnmarshalVariant(name); err != nil {
		return nil, err
	}
	return nv.Elem().Interface(), nil
}

// VisitString 兼容把变体编码为普通文本的自描述格式。
func (v variantVisitor) VisitString(name string) (any, error) {
	return v.VisitVariant(name)
}

// anyVisitor 服务于 interface{} 目标：类别由格式自行判定，
// 产出 bool/int64/uint64/float64/string/[]byte/[]any/map[string]any。
type anyVisitor struct {
	VisitorBase
	st *state
}

func (v anyVisitor) VisitBool(b bool) (any, error) { return b, nil }

func (v anyVisitor) VisitInt(i int64) (any, error) { return i, nil }

func (v anyVisitor) VisitUint(u uint64) (any, error) { return u, nil }

func (v anyVisitor) VisitFloat(f float64) (any, error) { return f, nil }

func (v anyVisitor) VisitString(s string) (any, error) {
	return v.st.ownString(s)
}

func (v anyVisitor) VisitBytes(b []byte) (any, error) {
	buf, err := v.st.scope.Allocate(len(b))
	if err != nil {
		return nil, err
	}
	copy(buf, b)
	return buf, nil
}

func (v anyVisitor) VisitNil() (any, error) { return nil, nil }

func (v anyVisitor) VisitSome(d Deserializer) (any, error) {
	rv, err := deserializeValue(v.st, anyType, d)
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

func (v anyVisitor) VisitVariant(name string) (any, error) {
	return v.st.ownString(name)
}

func (v anyVisitor) VisitSeq(seq SeqAccess) (any, error) {
	mark := v.st.scope.mark()
	out := []any{}
	seed := v.st.seedFor(anyType)

	for {
		e, ok, err := seq.NextElement(seed)
		if err != nil {
			v.st.scope.releaseFrom(mark)
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

func (v anyVisitor) VisitMap(m MapAccess) (any, error) {
	mark := v.st.scope.mark()
	out := map[string]any{}
	keySeed := v.st.seedFor(stringType)
	valSeed := v.st.seedFor(anyType)

	for {
		k, ok, err := m.NextKey(keySeed)
		if err != nil {
			v.st.scope.releaseFrom(mark)
			return nil, err
		}
		if !ok {
			break
		}
		val, err := m.NextValue(valSeed)
		if err != nil {
			v.st.scope.releaseFrom(mark)
			return nil, err
		}
		out[k.(string)] = val
	}
	return out, nil
}
