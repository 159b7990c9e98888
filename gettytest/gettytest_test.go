package gettytest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sea-grass/getty/de"
	"github.com/sea-grass/getty/pkg/merr"
)

func TestRecorderEvents(t *testing.T) {
	rec := NewRecorder()

	seq, err := rec.SerializeSeq(2)
	require.NoError(t, err)
	require.NoError(t, seq.SerializeElement("a"))
	require.NoError(t, seq.SerializeElement(1))
	require.NoError(t, seq.End())

	require.Equal(t, []Event{
		SeqBegin(2),
		Str("a"),
		Int(1),
		End(),
	}, rec.Events())
}

func TestRecorderPanicsAfterEnd(t *testing.T) {
	rec := NewRecorder()

	seq, err := rec.SerializeSeq(0)
	require.NoError(t, err)
	require.NoError(t, seq.End())

	require.Panics(t, func() {
		_ = seq.SerializeElement(1)
	})
}

func TestSourceExhaustion(t *testing.T) {
	s := NewSource([]Event{Int(1)})

	_, err := s.DeserializeAny(discardVisitor{})
	require.NoError(t, err)

	_, err = s.DeserializeAny(discardVisitor{})
	require.ErrorIs(t, err, merr.ErrUnexpectedEnd)
}

func TestSourceRest(t *testing.T) {
	s := NewSource([]Event{Int(1), Bool(true)})

	_, err := s.DeserializeAny(discardVisitor{})
	require.NoError(t, err)
	require.Equal(t, []Event{Bool(true)}, s.Rest())
}

func TestDump(t *testing.T) {
	out := Dump([]Event{SeqBegin(1), Int(1), End()})
	require.Contains(t, out, string(OpSeqBegin))
}

// discardVisitor 接受任意标量并丢弃。
type discardVisitor struct{}

func (discardVisitor) Expecting() string                { return "anything" }
func (discardVisitor) VisitBool(bool) (any, error)      { return nil, nil }
func (discardVisitor) VisitInt(int64) (any, error)      { return nil, nil }
func (discardVisitor) VisitUint(uint64) (any, error)    { return nil, nil }
func (discardVisitor) VisitFloat(float64) (any, error)  { return nil, nil }
func (discardVisitor) VisitString(string) (any, error)  { return nil, nil }
func (discardVisitor) VisitBytes([]byte) (any, error)   { return nil, nil }
func (discardVisitor) VisitNil() (any, error)           { return nil, nil }
func (discardVisitor) VisitVariant(string) (any, error) { return nil, nil }

func (discardVisitor) VisitSome(d de.Deserializer) (any, error) {
	return d.DeserializeAny(discardVisitor{})
}

func (discardVisitor) VisitSeq(de.SeqAccess) (any, error) { return nil, nil }
func (discardVisitor) VisitMap(de.MapAccess) (any, error) { return nil, nil }
