package series

import (
	"encoding/binary"
	"math"

	"github.com/apache/arrow-go/v18/arrow/array"
	xxhash "github.com/cespare/xxhash/v2"
	"golang.org/x/exp/constraints"
)

// HashKey encodes element i into buf, reusing its storage, and returns the
// encoding with its xxhash digest. ok is false for null elements.
//
// Floats are normalised before encoding: -0 encodes as +0 and every NaN
// encodes as the same NaN, so equal keys always collide.
func (s *Series) HashKey(i int, buf []byte) (key []byte, hash uint64, ok bool) {
	key = buf[:0]
	if s.arr.IsNull(i) {
		return key, 0, false
	}

	switch a := s.arr.(type) {
	case *array.Boolean:
		if a.Value(i) {
			key = append(key, 1)
		} else {
			key = append(key, 0)
		}
	case *array.Uint32:
		key = binary.LittleEndian.AppendUint32(key, a.Value(i))
	case *array.Int32:
		key = binary.LittleEndian.AppendUint32(key, uint32(a.Value(i))) //nolint:gosec // bit pattern
	case *array.Int64:
		key = binary.LittleEndian.AppendUint64(key, uint64(a.Value(i))) //nolint:gosec // bit pattern
	case *array.Float32:
		key = binary.LittleEndian.AppendUint32(key, math.Float32bits(canonicalFloat(a.Value(i))))
	case *array.Float64:
		key = binary.LittleEndian.AppendUint64(key, math.Float64bits(canonicalFloat(a.Value(i))))
	case *array.String:
		key = append(key, a.Value(i)...)
	case *array.Date32:
		key = binary.LittleEndian.AppendUint32(key, uint32(a.Value(i))) //nolint:gosec // bit pattern
	case *array.Time64:
		key = binary.LittleEndian.AppendUint64(key, uint64(a.Value(i))) //nolint:gosec // bit pattern
	default:
		return key, 0, false
	}

	return key, xxhash.Sum64(key), true
}

func canonicalFloat[T constraints.Float](f T) T {
	switch {
	case f == 0:
		return 0
	case f != f:
		return T(math.NaN())
	default:
		return f
	}
}

// KeyIndex maps encoded keys to the ascending list of rows holding them.
// Buckets are addressed by the xxhash digest and resolved by comparing the
// full encoding.
type KeyIndex struct {
	buckets map[uint64][]keyEntry
	size    int
}

type keyEntry struct {
	key  string
	rows []int
}

// NewKeyIndex creates an empty index sized for about capacity keys.
func NewKeyIndex(capacity int) *KeyIndex {
	return &KeyIndex{buckets: make(map[uint64][]keyEntry, capacity)}
}

// Insert records row under key and reports whether key was not present yet.
// Rows must be inserted in ascending order.
func (ki *KeyIndex) Insert(key []byte, hash uint64, row int) bool {
	bucket := ki.buckets[hash]
	for j := range bucket {
		if bucket[j].key == string(key) {
			bucket[j].rows = append(bucket[j].rows, row)
			return false
		}
	}
	ki.buckets[hash] = append(bucket, keyEntry{key: string(key), rows: []int{row}})
	ki.size++
	return true
}

// Lookup returns the rows stored under key, or nil.
func (ki *KeyIndex) Lookup(key []byte, hash uint64) []int {
	for _, e := range ki.buckets[hash] {
		if e.key == string(key) {
			return e.rows
		}
	}
	return nil
}

// Len returns the number of distinct keys.
func (ki *KeyIndex) Len() int {
	return ki.size
}

// Merge appends the rows of other after this index's rows, key by key. When
// other was built from rows following this index's rows, the row lists stay
// ascending.
func (ki *KeyIndex) Merge(other *KeyIndex) {
	for hash, bucket := range other.buckets {
		for _, e := range bucket {
			ki.mergeEntry(hash, e)
		}
	}
}

func (ki *KeyIndex) mergeEntry(hash uint64, e keyEntry) {
	bucket := ki.buckets[hash]
	for j := range bucket {
		if bucket[j].key == e.key {
			bucket[j].rows = append(bucket[j].rows, e.rows...)
			return
		}
	}
	ki.buckets[hash] = append(bucket, keyEntry{key: e.key, rows: append([]int(nil), e.rows...)})
	ki.size++
}
