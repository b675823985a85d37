package sections

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAt(t *testing.T) {
	base := []string{"a", "b", "c"}
	cases := []struct {
		index int
		want  []string
	}{
		{0, []string{"x", "a", "b", "c"}},
		{1, []string{"a", "x", "b", "c"}},
		{3, []string{"a", "b", "c", "x"}},
		{99, []string{"a", "b", "c", "x"}},
		{-1, []string{"a", "b", "c", "x"}},
	}
	for _, tc := range cases {
		got := InsertAt(base, "x", tc.index)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("InsertAt(%d) mismatch (-want +got):\n%s", tc.index, diff)
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, base, "input is not modified")
}

func TestMove(t *testing.T) {
	base := []string{"a", "b", "c", "d"}
	got, err := Move(base, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a", "d"}, got)

	got, err = Move(base, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "b", "c"}, got)

	got, err = Move(base, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, base, got)
	assert.Equal(t, []string{"a", "b", "c", "d"}, base)

	_, err = Move(base, 4, 0)
	assert.Error(t, err)
	_, err = Move(base, 0, -1)
	assert.Error(t, err)
	_, err = Move(nil, 0, 0)
	assert.Error(t, err)
}

func TestIsPermutation(t *testing.T) {
	assert.True(t, IsPermutation([]string{"a", "b"}, []string{"b", "a"}))
	assert.True(t, IsPermutation(nil, []string{}))
	assert.False(t, IsPermutation([]string{"a", "b"}, []string{"a", "a"}))
	assert.False(t, IsPermutation([]string{"a", "b"}, []string{"a"}))
	assert.False(t, IsPermutation([]string{"a", "b"}, []string{"a", "c"}))
}
