package ser

import (
	"reflect"

	"golang.org/x/exp/slices"

	"github.com/sea-grass/getty/internal/plan"
	"github.com/sea-grass/getty/pkg/merr"
)

// Serialize 把 v 编码到 s。
//
// 分发按固定顺序匹配规则，首个命中者生效，对受支持的类型全集是全函数：
//
//  1. v 实现 Marshaler：无条件委托（逃生舱口）。
//  2. v 实现 Variant：按无负载变体编码标签。
//  3. 布尔、各宽度整数与浮点、字符串、[]byte：对应的原语方法。
//  4. nil（指针或接口）：SerializeNil；非 nil 指针透明解引用。
//  5. 其余切片：序列规则；数组：元组规则（定长位置积类型）。
//  6. 非 nil 接口：仅递归编码当前动态负载，标签身份不在本层重现。
//  7. 结构体：按声明顺序逐字段编码。
//  8. 其余类型（chan、func、complex 等）：ErrUnsupportedType。
func Serialize(v any, s Serializer) error {
	if v == nil {
		return s.SerializeNil()
	}
	return serializeValue(reflect.ValueOf(v), s)
}

func serializeValue(rv reflect.Value, s Serializer) error {
	if !rv.IsValid() {
		return s.SerializeNil()
	}

	if m, ok := asMarshaler(rv); ok {
		return m.MarshalGetty(s)
	}
	if v, ok := asVariant(rv); ok {
		return s.SerializeVariant(v.VariantName())
	}

	switch rv.Kind() {
	case reflect.Bool:
		return s.SerializeBool(rv.Bool())

	case reflect.Int:
		return s.SerializeInt(int(rv.Int()))
	case reflect.Int8:
		return s.SerializeInt8(int8(rv.Int()))
	case reflect.Int16:
		return s.SerializeInt16(int16(rv.Int()))
	case reflect.Int32:
		return s.SerializeInt32(int32(rv.Int()))
	case reflect.Int64:
		return s.SerializeInt64(rv.Int())

	case reflect.Uint:
		return s.SerializeUint(uint(rv.Uint()))
	case reflect.Uint8:
		return s.SerializeUint8(uint8(rv.Uint()))
	case reflect.Uint16:
		return s.SerializeUint16(uint16(rv.Uint()))
	case reflect.Uint32:
		return s.SerializeUint32(uint32(rv.Uint()))
	case reflect.Uint64:
		return s.SerializeUint64(rv.Uint())

	case reflect.Float32:
		return s.SerializeFloat32(float32(rv.Float()))
	case reflect.Float64:
		return s.SerializeFloat64(rv.Float())

	case reflect.String:
		return s.SerializeString(rv.String())

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return s.SerializeBytes(rv.Bytes())
		}
		return serializeSeq(rv, s)

	case reflect.Array:
		return serializeTuple(rv, s)

	case reflect.Map:
		return serializeMap(rv, s)

	case reflect.Struct:
		return serializeStruct(rv, s)

	case reflect.Pointer:
		if rv.IsNil() {
			return s.SerializeNil()
		}
		return serializeValue(rv.Elem(), s)

	case reflect.Interface:
		if rv.IsNil() {
			return s.SerializeNil()
		}
		// 带负载的和类型只编码当前激活的负载；标签的恢复交由负载自身
		// 的形状或上游约定解决。
		return serializeValue(rv.Elem(), s)

	default:
		return merr.WrapErrUnsupportedType(rv.Type().String())
	}
}

func serializeSeq(rv reflect.Value, s Serializer) error {
	seq, err := s.SerializeSeq(rv.Len())
	if err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := seq.SerializeElement(rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return seq.End()
}

func serializeTuple(rv reflect.Value, s Serializer) error {
	tuple, err := s.SerializeTuple(rv.Len())
	if err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := tuple.SerializeElement(rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return tuple.End()
}

func serializeMap(rv reflect.Value, s Serializer) error {
	m, err := s.SerializeMap(rv.Len())
	if err != nil {
		return err
	}

	// 字符串键排序后写出，保证输出确定性；其余键类型按遍历顺序写出。
	if rv.Type().Key().Kind() == reflect.String {
		keys := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			keys = append(keys, iter.Key().String())
		}
		slices.Sort(keys)

		kv := reflect.New(rv.Type().Key()).Elem()
		for _, k := range keys {
			kv.SetString(k)
			if err := m.SerializeEntry(kv.Interface(), rv.MapIndex(kv).Interface()); err != nil {
				return err
			}
		}
		return m.End()
	}

	iter := rv.MapRange()
	for iter.Next() {
		if err := m.SerializeEntry(iter.Key().Interface(), iter.Value().Interface()); err != nil {
			return err
		}
	}
	return m.End()
}

func serializeStruct(rv reflect.Value, s Serializer) error {
	p := plan.For(rv.Type())

	st, err := s.SerializeStruct(p.Name, len(p.Fields))
	if err != nil {
		return err
	}
	for _, f := range p.Fields {
		if err := st.SerializeField(f.Name, rv.Field(f.Index).Interface()); err != nil {
			return err
		}
	}
	return st.End()
}

func asMarshaler(rv reflect.Value) (Marshaler, bool) {
	if !rv.CanInterface() {
		return nil, false
	}
	if m, ok := rv.Interface().(Marshaler); ok {
		return m, true
	}
	if rv.CanAddr() {
		if m, ok := rv.Addr().Interface().(Marshaler); ok {
			return m, true
		}
	}
	return nil, false
}

func asVariant(rv reflect.Value) (Variant, bool) {
	if !rv.CanInterface() {
		return nil, false
	}
	if v, ok := rv.Interface().(Variant); ok {
		return v, true
	}
	return nil, false
}
