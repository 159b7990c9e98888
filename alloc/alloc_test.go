package alloc

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoAllocator(t *testing.T) {
	a := Go()

	b, err := a.Allocate(8)
	require.NoError(t, err)
	require.Len(t, b, 8)

	b, err = a.Resize(b, 4)
	require.NoError(t, err)
	assert.Len(t, b, 4)

	grown, err := a.Resize(b, 16)
	require.NoError(t, err)
	assert.Len(t, grown, 16)

	a.Free(grown)
}

func TestResizeKeepsContent(t *testing.T) {
	a := Go()

	b, err := a.Allocate(3)
	require.NoError(t, err)
	copy(b, "abc")

	b, err = a.Resize(b, 6)
	require.NoError(t, err)
	require.Len(t, b, 6)
	assert.Equal(t, "abc", string(b[:3]))
}

func TestTracking(t *testing.T) {
	a := NewTracking(nil)
	assert.EqualValues(t, 0, a.Live())

	b1, err := a.Allocate(4)
	require.NoError(t, err)
	b2, err := a.Allocate(4)
	require.NoError(t, err)
	assert.EqualValues(t, 2, a.Live())
	assert.EqualValues(t, 2, a.Allocs())

	// Resize 不改变净存活数。
	b1, err = a.Resize(b1, 32)
	require.NoError(t, err)
	assert.EqualValues(t, 2, a.Live())

	a.Free(b1)
	a.Free(b2)
	assert.EqualValues(t, 0, a.Live())
	assert.EqualValues(t, 2, a.Frees())
}

type exhaustedAllocator struct{}

var _ Allocator = exhaustedAllocator{}

func (exhaustedAllocator) Allocate(n int) ([]byte, error) {
	return nil, errors.New("arena exhausted")
}

func (exhaustedAllocator) Resize(b []byte, n int) ([]byte, error) {
	return nil, errors.New("arena exhausted")
}

func (exhaustedAllocator) Free(b []byte) {}

// 底层分配失败时不应计入存活数。
func TestTrackingSkipsFailedAllocations(t *testing.T) {
	a := NewTracking(exhaustedAllocator{})

	_, err := a.Allocate(4)
	require.Error(t, err)
	assert.EqualValues(t, 0, a.Allocs())
	assert.EqualValues(t, 0, a.Live())
}
