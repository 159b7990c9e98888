package getty_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sea-grass/getty"
	"github.com/sea-grass/getty/gettytest"
)

func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()

	rec := gettytest.NewRecorder()
	require.NoError(t, getty.Serialize(v, rec))

	out, err := getty.Deserialize[T](nil, rec.Source())
	require.NoError(t, err)
	return out
}

func TestRoundTripIntegerExtremes(t *testing.T) {
	require.Equal(t, int8(math.MinInt8), roundTrip(t, int8(math.MinInt8)))
	require.Equal(t, int8(math.MaxInt8), roundTrip(t, int8(math.MaxInt8)))
	require.Equal(t, int16(math.MinInt16), roundTrip(t, int16(math.MinInt16)))
	require.Equal(t, int16(math.MaxInt16), roundTrip(t, int16(math.MaxInt16)))
	require.Equal(t, int32(math.MinInt32), roundTrip(t, int32(math.MinInt32)))
	require.Equal(t, int32(math.MaxInt32), roundTrip(t, int32(math.MaxInt32)))
	require.Equal(t, int64(math.MinInt64), roundTrip(t, int64(math.MinInt64)))
	require.Equal(t, int64(math.MaxInt64), roundTrip(t, int64(math.MaxInt64)))

	require.Equal(t, uint8(math.MaxUint8), roundTrip(t, uint8(math.MaxUint8)))
	require.Equal(t, uint16(math.MaxUint16), roundTrip(t, uint16(math.MaxUint16)))
	require.Equal(t, uint32(math.MaxUint32), roundTrip(t, uint32(math.MaxUint32)))
	require.Equal(t, uint64(math.MaxUint64), roundTrip(t, uint64(math.MaxUint64)))
}

func TestRoundTripFloatSpecials(t *testing.T) {
	require.Equal(t, 0.0, roundTrip(t, 0.0))

	negZero := math.Copysign(0, -1)
	require.True(t, math.Signbit(roundTrip(t, negZero)))

	require.True(t, math.IsNaN(roundTrip(t, math.NaN())))
	require.True(t, math.IsInf(roundTrip(t, math.Inf(1)), 1))
}

func TestRoundTripCompound(t *testing.T) {
	type inner struct {
		Tags []string `getty:"tags"`
	}
	type outer struct {
		Name  string         `getty:"name"`
		Score *float64       `getty:"score"`
		Inner inner          `getty:"inner"`
		Bits  [2]uint8       `getty:"bits"`
		Attrs map[string]int `getty:"attrs"`
	}

	score := 9.5
	in := outer{
		Name:  "hello",
		Score: &score,
		Inner: inner{Tags: []string{"a", "b"}},
		Bits:  [2]uint8{1, 2},
		Attrs: map[string]int{"k": 1},
	}

	require.Equal(t, in, roundTrip(t, in))
}

func TestRoundTripNilOptional(t *testing.T) {
	require.Nil(t, roundTrip(t, (*int)(nil)))
}
