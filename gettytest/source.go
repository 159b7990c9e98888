package gettytest

import (
	"github.com/sea-grass/getty/de"
	"github.com/sea-grass/getty/pkg/merr"
)

// Source 是参考格式的反序列化端：从事件流回放。
// 事件流是自描述的，类型提示方法统一按实际出现的事件分发，
// 由目标类型的访问者决定接受或拒绝。
type Source struct {
	events []Event
	pos    int
}

var _ de.Deserializer = (*Source)(nil)

// NewSource 基于事件流创建回放端。
func NewSource(events []Event) *Source {
	return &Source{events: events}
}

// Rest 返回尚未消费的事件，便于测试断言消费进度。
func (s *Source) Rest() []Event {
	return s.events[s.pos:]
}

func (s *Source) next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, merr.WrapErrUnexpectedEnd("event stream exhausted")
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func (s *Source) peek() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, merr.WrapErrUnexpectedEnd("event stream exhausted")
	}
	return s.events[s.pos], nil
}

func (s *Source) DeserializeAny(v de.Visitor) (any, error) {
	ev, err := s.next()
	if err != nil {
		return nil, err
	}

	switch ev.Op {
	case OpBool:
		return v.VisitBool(ev.Value.(bool))

	case OpInt:
		return v.VisitInt(int64(ev.Value.(int)))
	case OpInt8:
		return v.VisitInt(int64(ev.Value.(int8)))
	case OpInt16:
		return v.VisitInt(int64(ev.Value.(int16)))
	case OpInt32:
		return v.VisitInt(int64(ev.Value.(int32)))
	case OpInt64:
		return v.VisitInt(ev.Value.(int64))

	case OpUint:
		return v.VisitUint(uint64(ev.Value.(uint)))
	case OpUint8:
		return v.VisitUint(uint64(ev.Value.(uint8)))
	case OpUint16:
		return v.VisitUint(uint64(ev.Value.(uint16)))
	case OpUint32:
		return v.VisitUint(uint64(ev.Value.(uint32)))
	case OpUint64:
		return v.VisitUint(ev.Value.(uint64))

	case OpFloat32:
		return v.VisitFloat(float64(ev.Value.(float32)))
	case OpFloat64:
		return v.VisitFloat(ev.Value.(float64))

	case OpString:
		return v.VisitString(ev.Value.(string))
	case OpBytes:
		return v.VisitBytes(ev.Value.([]byte))
	case OpNil:
		return v.VisitNil()
	case OpVariant:
		return v.VisitVariant(ev.Name)

	case OpSeqBegin, OpTupleBegin:
		return v.VisitSeq(&seqAccess{s: s})
	case OpMapBegin:
		return v.VisitMap(&mapAccess{s: s})
	case OpStructBegin:
		return v.VisitMap(&mapAccess{s: s, structMode: true})

	default:
		return nil, merr.WrapErrUnexpectedCategory(v.Expecting(), string(ev.Op))
	}
}

func (s *Source) DeserializeBool(v de.Visitor) (any, error)   { return s.DeserializeAny(v) }
func (s *Source) DeserializeInt(v de.Visitor) (any, error)    { return s.DeserializeAny(v) }
func (s *Source) DeserializeFloat(v de.Visitor) (any, error)  { return s.DeserializeAny(v) }
func (s *Source) DeserializeString(v de.Visitor) (any, error) { return s.DeserializeAny(v) }
func (s *Source) DeserializeBytes(v de.Visitor) (any, error)  { return s.DeserializeAny(v) }

func (s *Source) DeserializeOptional(v de.Visitor) (any, error) {
	ev, err := s.peek()
	if err != nil {
		return nil, err
	}
	if ev.Op == OpNil {
		s.pos++
		return v.VisitNil()
	}
	return v.VisitSome(s)
}

func (s *Source) DeserializeSeq(v de.Visitor) (any, error) { return s.DeserializeAny(v) }
func (s *Source) DeserializeMap(v de.Visitor) (any, error) { return s.DeserializeAny(v) }

func (s *Source) DeserializeStruct(name string, fields []string, v de.Visitor) (any, error) {
	return s.DeserializeAny(v)
}

func (s *Source) DeserializeTuple(length int, v de.Visitor) (any, error) {
	return s.DeserializeAny(v)
}

func (s *Source) DeserializeVariant(v de.Visitor) (any, error) { return s.DeserializeAny(v) }

type seqAccess struct {
	s *Source
}

var _ de.SeqAccess = (*seqAccess)(nil)

func (a *seqAccess) NextElement(seed de.DeserializeFunc) (any, bool, error) {
	ev, err := a.s.peek()
	if err != nil {
		return nil, false, err
	}
	if ev.Op == OpEnd {
		a.s.pos++
		return nil, false, nil
	}

	v, err := seed(a.s)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

type mapAccess struct {
	s *Source
	// structMode 表示键以 Field 事件形式出现（结构体编码产物）。
	structMode bool
}

var _ de.MapAccess = (*mapAccess)(nil)

func (a *mapAccess) NextKey(seed de.DeserializeFunc) (any, bool, error) {
	ev, err := a.s.peek()
	if err != nil {
		return nil, false, err
	}
	if ev.Op == OpEnd {
		a.s.pos++
		return nil, false, nil
	}

	if a.structMode {
		if ev.Op != OpField {
			return nil, false, merr.WrapErrUnexpectedCategory("field name", string(ev.Op))
		}
		a.s.pos++
		v, err := seed(NewSource([]Event{Str(ev.Name)}))
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}

	v, err := seed(a.s)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (a *mapAccess) NextValue(seed de.DeserializeFunc) (any, error) {
	return seed(a.s)
}
