package plan

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	X       int
	Renamed string `getty:"renamed"`
	Skipped bool   `getty:"-"`
	hidden  int    //nolint:unused
}

func TestFor(t *testing.T) {
	p := For(reflect.TypeOf(sample{}))
	require.Equal(t, "sample", p.Name)
	assert.Equal(t, []string{"X", "renamed"}, p.FieldNames())

	f, ok := p.Lookup("renamed")
	require.True(t, ok)
	assert.Equal(t, 1, f.Index)
	assert.Equal(t, reflect.String, f.Type.Kind())

	_, ok = p.Lookup("Skipped")
	assert.False(t, ok)
	_, ok = p.Lookup("hidden")
	assert.False(t, ok)
}

func TestForCaches(t *testing.T) {
	p1 := For(reflect.TypeOf(sample{}))
	p2 := For(reflect.TypeOf(sample{}))
	assert.Same(t, p1, p2)
}
