package series

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKeyNormalisesFloats(t *testing.T) {
	s := withNulls(t, "x",
		[]float64{0, math.Copysign(0, -1), math.NaN(), math.Float64frombits(0x7ff8000000000001), 1, 0},
		[]bool{true, true, true, true, true, false})
	defer s.Release()

	key := func(i int) (string, uint64) {
		k, h, ok := s.HashKey(i, nil)
		require.True(t, ok)
		return string(k), h
	}

	zero, zh := key(0)
	negZero, nzh := key(1)
	assert.Equal(t, zero, negZero)
	assert.Equal(t, zh, nzh)

	nan1, _ := key(2)
	nan2, _ := key(3)
	assert.Equal(t, nan1, nan2)

	one, _ := key(4)
	assert.NotEqual(t, zero, one)

	_, _, ok := s.HashKey(5, nil)
	assert.False(t, ok)
}

func TestKeyIndex(t *testing.T) {
	s := New("k", []string{"a", "b", "a", "c", "a"}, nil)
	defer s.Release()

	build := func(from, to int) *KeyIndex {
		idx := NewKeyIndex(to - from)
		var buf []byte
		for i := from; i < to; i++ {
			k, h, _ := s.HashKey(i, buf)
			buf = k
			idx.Insert(k, h, i)
		}
		return idx
	}

	lookup := func(idx *KeyIndex, v string) []int {
		single := New("p", []string{v}, nil)
		defer single.Release()
		k, h, _ := single.HashKey(0, nil)
		return idx.Lookup(k, h)
	}

	whole := build(0, 5)
	assert.Equal(t, 3, whole.Len())
	assert.Equal(t, []int{0, 2, 4}, lookup(whole, "a"))
	assert.Equal(t, []int{1}, lookup(whole, "b"))
	assert.Nil(t, lookup(whole, "zzz"))

	// Chunks merged in order reproduce the single-pass index.
	merged := build(0, 2)
	merged.Merge(build(2, 4))
	merged.Merge(build(4, 5))
	assert.Equal(t, whole.Len(), merged.Len())
	for _, v := range []string{"a", "b", "c"} {
		assert.Equal(t, lookup(whole, v), lookup(merged, v), v)
	}
}
