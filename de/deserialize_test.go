package de_test

import (
	"math"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"

	"github.com/sea-grass/getty/alloc"
	"github.com/sea-grass/getty/de"
	"github.com/sea-grass/getty/gettytest"
	"github.com/sea-grass/getty/pkg/merr"
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

func (s *suit) UnmarshalVariant(name string) error {
	switch name {
	case "spades":
		*s = spades
	case "hearts":
		*s = hearts
	default:
		return merr.WrapErrUnknownVariant("suit", name)
	}
	return nil
}

// loud 通过逃生舱口接管自身解码。
type loud struct {
	v string
}

func (l *loud) UnmarshalGetty(a alloc.Allocator, d de.Deserializer) error {
	res, err := d.DeserializeString(rawStringVisitor{de.VisitorBase{Desc: "loud string"}})
	if err != nil {
		return err
	}
	l.v = strings.ToUpper(res.(string))
	return nil
}

type rawStringVisitor struct {
	de.VisitorBase
}

func (rawStringVisitor) VisitString(s string) (any, error) {
	return s, nil
}

type DeserializeSuite struct {
	suite.Suite
}

func src(events ...gettytest.Event) *gettytest.Source {
	return gettytest.NewSource(events)
}

func (s *DeserializeSuite) TestScalars() {
	b, err := de.Deserialize[bool](nil, src(gettytest.Bool(true)))
	s.Require().NoError(err)
	s.True(b)

	i, err := de.Deserialize[int](nil, src(gettytest.Int64(42)))
	s.Require().NoError(err)
	s.Equal(42, i)

	u, err := de.Deserialize[uint32](nil, src(gettytest.Uint8(7)))
	s.Require().NoError(err)
	s.Equal(uint32(7), u)

	f, err := de.Deserialize[float64](nil, src(gettytest.Float32(1.5)))
	s.Require().NoError(err)
	s.Equal(1.5, f)

	str, err := de.Deserialize[string](nil, src(gettytest.Str("hi")))
	s.Require().NoError(err)
	s.Equal("hi", str)
}

func (s *DeserializeSuite) TestIntFromFloatSourceRejected() {
	_, err := de.Deserialize[int](nil, src(gettytest.Float64(1.5)))
	s.ErrorIs(err, merr.ErrUnexpectedCategory)
}

func (s *DeserializeSuite) TestFloatFromInt() {
	f, err := de.Deserialize[float64](nil, src(gettytest.Int(3)))
	s.Require().NoError(err)
	s.Equal(3.0, f)
}

func (s *DeserializeSuite) TestOverflow() {
	_, err := de.Deserialize[int8](nil, src(gettytest.Int64(300)))
	s.ErrorIs(err, merr.ErrInvalidValue)

	_, err = de.Deserialize[uint8](nil, src(gettytest.Int(-1)))
	s.ErrorIs(err, merr.ErrInvalidValue)

	_, err = de.Deserialize[int64](nil, src(gettytest.Uint64(math.MaxUint64)))
	s.ErrorIs(err, merr.ErrInvalidValue)
}

func (s *DeserializeSuite) TestBytes() {
	b, err := de.Deserialize[[]byte](nil, src(gettytest.Bytes([]byte{1, 2})))
	s.Require().NoError(err)
	s.Equal([]byte{1, 2}, b)
}

func (s *DeserializeSuite) TestSeq() {
	got, err := de.Deserialize[[]string](nil, src(
		gettytest.SeqBegin(2),
		gettytest.Str("a"),
		gettytest.Str("b"),
		gettytest.End(),
	))
	s.Require().NoError(err)
	s.Equal([]string{"a", "b"}, got)
}

func (s *DeserializeSuite) TestEmptySeq() {
	got, err := de.Deserialize[[]int](nil, src(
		gettytest.SeqBegin(0),
		gettytest.End(),
	))
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *DeserializeSuite) TestTuple() {
	got, err := de.Deserialize[[3]int](nil, src(
		gettytest.TupleBegin(3),
		gettytest.Int(1),
		gettytest.Int(2),
		gettytest.Int(3),
		gettytest.End(),
	))
	s.Require().NoError(err)
	s.Equal([3]int{1, 2, 3}, got)
}

func (s *DeserializeSuite) TestTupleArityMismatch() {
	_, err := de.Deserialize[[3]int](nil, src(
		gettytest.TupleBegin(2),
		gettytest.Int(1),
		gettytest.Int(2),
		gettytest.End(),
	))
	s.ErrorIs(err, merr.ErrMissingElement)

	_, err = de.Deserialize[[1]int](nil, src(
		gettytest.TupleBegin(2),
		gettytest.Int(1),
		gettytest.Int(2),
		gettytest.End(),
	))
	s.ErrorIs(err, merr.ErrInvalidValue)
}

func (s *DeserializeSuite) TestMap() {
	got, err := de.Deserialize[map[string]int](nil, src(
		gettytest.MapBegin(2),
		gettytest.Str("a"),
		gettytest.Int(1),
		gettytest.Str("b"),
		gettytest.Int(2),
		gettytest.End(),
	))
	s.Require().NoError(err)
	s.Equal(map[string]int{"a": 1, "b": 2}, got)
}

func (s *DeserializeSuite) TestStruct() {
	got, err := de.Deserialize[point](nil, src(
		gettytest.StructBegin("point", 2),
		gettytest.Field("x"),
		gettytest.Int(1),
		gettytest.Field("y"),
		gettytest.Int(-2),
		gettytest.End(),
	))
	s.Require().NoError(err)
	s.Equal(point{X: 1, Y: -2}, got)
}

func (s *DeserializeSuite) TestMissingField() {
	_, err := de.Deserialize[point](nil, src(
		gettytest.StructBegin("point", 2),
		gettytest.Field("x"),
		gettytest.Int(1),
		gettytest.End(),
	))
	s.ErrorIs(err, merr.ErrMissingField)
}

func (s *DeserializeSuite) TestUnknownField() {
	_, err := de.Deserialize[point](nil, src(
		gettytest.StructBegin("point", 2),
		gettytest.Field("z"),
		gettytest.Int(1),
		gettytest.End(),
	))
	s.ErrorIs(err, merr.ErrUnknownField)
}

func (s *DeserializeSuite) TestDuplicateField() {
	_, err := de.Deserialize[point](nil, src(
		gettytest.StructBegin("point", 2),
		gettytest.Field("x"),
		gettytest.Int(1),
		gettytest.Field("x"),
		gettytest.Int(2),
		gettytest.End(),
	))
	s.ErrorIs(err, merr.ErrInvalidValue)
}

func (s *DeserializeSuite) TestOptional() {
	got, err := de.Deserialize[*int](nil, src(gettytest.Nil()))
	s.Require().NoError(err)
	s.Nil(got)

	got, err = de.Deserialize[*int](nil, src(gettytest.Int(5)))
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(5, *got)
}

func (s *DeserializeSuite) TestAnyTarget() {
	got, err := de.Deserialize[any](nil, src(
		gettytest.MapBegin(1),
		gettytest.Str("k"),
		gettytest.SeqBegin(2),
		gettytest.Int(1),
		gettytest.Bool(true),
		gettytest.End(),
		gettytest.End(),
	))
	s.Require().NoError(err)
	s.Equal(map[string]any{"k": []any{int64(1), true}}, got)
}

func (s *DeserializeSuite) TestVariant() {
	got, err := de.Deserialize[suit](nil, src(gettytest.Variant("hearts")))
	s.Require().NoError(err)
	s.Equal(hearts, got)

	// 自描述格式把变体写成普通文本时同样可以还原。
	got, err = de.Deserialize[suit](nil, src(gettytest.Str("spades")))
	s.Require().NoError(err)
	s.Equal(spades, got)

	_, err = de.Deserialize[suit](nil, src(gettytest.Variant("joker")))
	s.ErrorIs(err, merr.ErrUnknownVariant)
}

func (s *DeserializeSuite) TestUnmarshalerEscapeHatch() {
	got, err := de.Deserialize[loud](nil, src(gettytest.Str("hi")))
	s.Require().NoError(err)
	s.Equal("HI", got.v)
}

func (s *DeserializeSuite) TestTargetValidation() {
	s.ErrorIs(de.DeserializeInto(nil, 42, src(gettytest.Int(1))), merr.ErrUnsupportedType)
	s.ErrorIs(de.DeserializeInto(nil, (*int)(nil), src(gettytest.Int(1))), merr.ErrUnsupportedType)
}

func (s *DeserializeSuite) TestNonEmptyInterfaceTarget() {
	_, err := de.Deserialize[interface{ Foo() }](nil, src(gettytest.Int(1)))
	s.ErrorIs(err, merr.ErrUnsupportedType)
}

func (s *DeserializeSuite) TestTruncatedInput() {
	_, err := de.Deserialize[[]int](nil, src(
		gettytest.SeqBegin(2),
		gettytest.Int(1),
	))
	s.ErrorIs(err, merr.ErrUnexpectedEnd)
}

func (s *DeserializeSuite) TestAllocatorOwnership() {
	tracking := alloc.NewTracking(nil)

	got, err := de.Deserialize[[]string](tracking, src(
		gettytest.SeqBegin(2),
		gettytest.Str("a"),
		gettytest.Str("b"),
		gettytest.End(),
	))
	s.Require().NoError(err)
	s.Equal([]string{"a", "b"}, got)

	// 成功时所有权移交调用方，分配保持存活。
	s.EqualValues(2, tracking.Live())
}

func (s *DeserializeSuite) TestFailureReleasesAllocations() {
	tracking := alloc.NewTracking(nil)

	// 第三个元素类别不符，前两个已分配的字符串必须在错误返回前释放。
	_, err := de.Deserialize[[]string](tracking, src(
		gettytest.SeqBegin(3),
		gettytest.Str("a"),
		gettytest.Str("b"),
		gettytest.Bool(true),
		gettytest.End(),
	))
	s.ErrorIs(err, merr.ErrUnexpectedCategory)
	s.Zero(tracking.Live())
	s.EqualValues(2, tracking.Allocs())
}

type exhaustedAllocator struct{}

var _ alloc.Allocator = exhaustedAllocator{}

func (exhaustedAllocator) Allocate(n int) ([]byte, error) {
	return nil, errors.New("arena exhausted")
}

func (exhaustedAllocator) Resize(b []byte, n int) ([]byte, error) {
	return nil, errors.New("arena exhausted")
}

func (exhaustedAllocator) Free(b []byte) {}

// silentAllocator 既不报错也不给内存，属于违约实现。
type silentAllocator struct{}

var _ alloc.Allocator = silentAllocator{}

func (silentAllocator) Allocate(n int) ([]byte, error) { return nil, nil }

func (silentAllocator) Resize(b []byte, n int) ([]byte, error) { return nil, nil }

func (silentAllocator) Free(b []byte) {}

func (s *DeserializeSuite) TestAllocatorFailurePropagated() {
	_, err := de.Deserialize[string](exhaustedAllocator{}, src(gettytest.Str("hi")))
	s.ErrorContains(err, "arena exhausted")

	_, err = de.Deserialize[[]byte](exhaustedAllocator{}, src(gettytest.Bytes([]byte{1, 2})))
	s.ErrorContains(err, "arena exhausted")
}

func (s *DeserializeSuite) TestSilentAllocatorRejected() {
	_, err := de.Deserialize[string](silentAllocator{}, src(gettytest.Str("hi")))
	s.ErrorIs(err, merr.ErrAllocation)
}

func TestDeserialize(t *testing.T) {
	suite.Run(t, new(DeserializeSuite))
}
