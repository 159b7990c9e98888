package ser_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sea-grass/getty/gettytest"
	"github.com/sea-grass/getty/pkg/merr"
	"github.com/sea-grass/getty/ser"
)

type point struct {
	X int `getty:"x"`
	Y int `getty:"y"`
}

type suit uint8

const (
	spades suit = iota
	hearts
)

func (s suit) VariantName() string {
	if s == hearts {
		return "hearts"
	}
	return "spades"
}

// custom 同时提供逃生舱口与变体标签，用于验证规则优先级。
type custom struct{}

func (custom) MarshalGetty(s ser.Serializer) error {
	return s.SerializeString("custom")
}

func (custom) VariantName() string {
	return "never"
}

type SerializeSuite struct {
	suite.Suite
	rec *gettytest.Recorder
}

func (s *SerializeSuite) SetupTest() {
	s.rec = gettytest.NewRecorder()
}

func (s *SerializeSuite) serialize(v any) []gettytest.Event {
	s.Require().NoError(ser.Serialize(v, s.rec))
	return s.rec.Events()
}

func (s *SerializeSuite) TestPrimitives() {
	s.Equal([]gettytest.Event{gettytest.Bool(true)}, s.serialize(true))

	s.rec.Reset()
	s.Equal([]gettytest.Event{gettytest.Int8(-5)}, s.serialize(int8(-5)))

	s.rec.Reset()
	s.Equal([]gettytest.Event{gettytest.Uint16(512)}, s.serialize(uint16(512)))

	s.rec.Reset()
	s.Equal([]gettytest.Event{gettytest.Float32(1.5)}, s.serialize(float32(1.5)))

	s.rec.Reset()
	s.Equal([]gettytest.Event{gettytest.Str("hi")}, s.serialize("hi"))
}

func (s *SerializeSuite) TestBytes() {
	s.Equal([]gettytest.Event{gettytest.Bytes([]byte("raw"))}, s.serialize([]byte("raw")))
}

func (s *SerializeSuite) TestByteArrayIsTuple() {
	// 定长字节数组走元组规则，不退化为字节串。
	s.Equal([]gettytest.Event{
		gettytest.TupleBegin(2),
		gettytest.Uint8(1),
		gettytest.Uint8(2),
		gettytest.End(),
	}, s.serialize([2]byte{1, 2}))
}

func (s *SerializeSuite) TestSeq() {
	s.Equal([]gettytest.Event{
		gettytest.SeqBegin(2),
		gettytest.Str("a"),
		gettytest.Str("b"),
		gettytest.End(),
	}, s.serialize([]string{"a", "b"}))
}

func (s *SerializeSuite) TestEmptySeq() {
	s.Equal([]gettytest.Event{
		gettytest.SeqBegin(0),
		gettytest.End(),
	}, s.serialize([]string{}))
}

func (s *SerializeSuite) TestTuple() {
	s.Equal([]gettytest.Event{
		gettytest.TupleBegin(3),
		gettytest.Bool(true),
		gettytest.Int(42),
		gettytest.Str("hi"),
		gettytest.End(),
	}, s.serialize([3]any{true, 42, "hi"}))
}

func (s *SerializeSuite) TestStruct() {
	s.Equal([]gettytest.Event{
		gettytest.StructBegin("point", 2),
		gettytest.Field("x"),
		gettytest.Int(1),
		gettytest.Field("y"),
		gettytest.Int(-2),
		gettytest.End(),
	}, s.serialize(point{X: 1, Y: -2}))
}

func (s *SerializeSuite) TestMapSortsStringKeys() {
	s.Equal([]gettytest.Event{
		gettytest.MapBegin(2),
		gettytest.Str("a"),
		gettytest.Int(1),
		gettytest.Str("b"),
		gettytest.Int(2),
		gettytest.End(),
	}, s.serialize(map[string]int{"b": 2, "a": 1}))
}

func (s *SerializeSuite) TestNil() {
	s.Equal([]gettytest.Event{gettytest.Nil()}, s.serialize(nil))

	s.rec.Reset()
	s.Equal([]gettytest.Event{gettytest.Nil()}, s.serialize((*point)(nil)))
}

func (s *SerializeSuite) TestPointerDereference() {
	x := 7
	s.Equal([]gettytest.Event{gettytest.Int(7)}, s.serialize(&x))
}

func (s *SerializeSuite) TestInterfacePayload() {
	s.Equal([]gettytest.Event{
		gettytest.SeqBegin(2),
		gettytest.Nil(),
		gettytest.Int(1),
		gettytest.End(),
	}, s.serialize([]any{nil, 1}))
}

func (s *SerializeSuite) TestVariant() {
	s.Equal([]gettytest.Event{gettytest.Variant("hearts")}, s.serialize(hearts))
}

func (s *SerializeSuite) TestMarshalerWinsOverVariant() {
	s.Equal([]gettytest.Event{gettytest.Str("custom")}, s.serialize(custom{}))
}

func (s *SerializeSuite) TestFieldTagSkip() {
	type masked struct {
		Kept    int `getty:"kept"`
		Dropped int `getty:"-"`
		hidden  int
	}
	_ = masked{}.hidden

	s.Equal([]gettytest.Event{
		gettytest.StructBegin("masked", 1),
		gettytest.Field("kept"),
		gettytest.Int(3),
		gettytest.End(),
	}, s.serialize(masked{Kept: 3, Dropped: 4}))
}

func (s *SerializeSuite) TestUnsupportedType() {
	s.ErrorIs(ser.Serialize(make(chan int), s.rec), merr.ErrUnsupportedType)
	s.ErrorIs(ser.Serialize(func() {}, s.rec), merr.ErrUnsupportedType)
	s.ErrorIs(ser.Serialize(complex(1, 2), s.rec), merr.ErrUnsupportedType)
}

func TestSerialize(t *testing.T) {
	suite.Run(t, new(SerializeSuite))
}
