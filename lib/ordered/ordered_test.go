package ordered

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMapKeepsFirstPosition(t *testing.T) {
	m := NewMap[string, int64]()
	require.True(t, m.Put("b", 2))
	require.True(t, m.Put("a", 1))
	require.False(t, m.Put("b", 20))
	require.True(t, m.Put("c", 3))

	if diff := cmp.Diff([]string{"b", "a", "c"}, m.Keys()); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]int64{20, 1, 3}, m.Values()); diff != "" {
		t.Fatal(diff)
	}

	v, ok := m.Get("b")
	require.True(t, ok)
	require.Equal(t, int64(20), v)
	require.False(t, m.Has("z"))
	require.Equal(t, 3, m.Len())
}

func TestZeroMap(t *testing.T) {
	var m Map[int, string]
	m.Put(1, "one")
	require.Equal(t, 1, m.Len())

	var nilMap *Map[int, string]
	require.Equal(t, 0, nilMap.Len())
	require.Nil(t, nilMap.Keys())
}
