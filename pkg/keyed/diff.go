package keyed

import (
	"sort"

	"github.com/vango-dev/reactor/internal/errors"
)

// Op is the type of row operation.
type Op uint8

const (
	OpCreate Op = 0x01 // Create a row for a new key
	OpMove   Op = 0x02 // Move a retained row to a new position
	OpRemove Op = 0x03 // Remove a row and dispose its scope
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CreateRow"
	case OpMove:
		return "MoveRow"
	case OpRemove:
		return "RemoveRow"
	default:
		return "Unknown"
	}
}

// Patch is a single row operation.
type Patch[K comparable] struct {
	Op  Op
	Key K

	// Index is the row's position in the new sequence for OpCreate and
	// OpMove, and its position in the previous sequence for OpRemove.
	Index int
}

// Diff computes the row operations turning prev into next. Patches are
// ordered with every OpRemove first (in previous order), followed by
// OpCreate and OpMove in new-sequence order. A key that occurs twice in
// either sequence fails with a DuplicateKey error and no patches.
func Diff[K comparable](prev, next []K) ([]Patch[K], error) {
	prevIndex, err := indexKeys(prev, "previous")
	if err != nil {
		return nil, err
	}
	nextIndex, err := indexKeys(next, "new")
	if err != nil {
		return nil, err
	}

	var patches []Patch[K]
	for i, key := range prev {
		if _, ok := nextIndex[key]; !ok {
			patches = append(patches, Patch[K]{Op: OpRemove, Key: key, Index: i})
		}
	}

	// Previous positions of retained keys, in new order.
	retained := make([]int, 0, len(next))
	for _, key := range next {
		if i, ok := prevIndex[key]; ok {
			retained = append(retained, i)
		}
	}
	stable := lis(retained)

	r := 0
	for i, key := range next {
		if _, ok := prevIndex[key]; !ok {
			patches = append(patches, Patch[K]{Op: OpCreate, Key: key, Index: i})
			continue
		}
		if !stable[r] {
			patches = append(patches, Patch[K]{Op: OpMove, Key: key, Index: i})
		}
		r++
	}
	return patches, nil
}

func indexKeys[K comparable](keys []K, which string) (map[K]int, error) {
	index := make(map[K]int, len(keys))
	for i, key := range keys {
		if first, dup := index[key]; dup {
			return nil, errors.New(errors.CodeDuplicateKey).
				WithDetailf("key %v appears at positions %d and %d of the %s sequence", key, first, i, which)
		}
		index[key] = i
	}
	return index, nil
}

// lis marks the elements of seq that form a longest strictly increasing
// subsequence. O(n log n).
func lis(seq []int) []bool {
	in := make([]bool, len(seq))
	if len(seq) == 0 {
		return in
	}

	// tails[k] is the index in seq of the smallest tail of an increasing
	// subsequence of length k+1.
	tails := make([]int, 0, len(seq))
	prev := make([]int, len(seq))
	for i, v := range seq {
		k := sort.Search(len(tails), func(j int) bool { return seq[tails[j]] >= v })
		if k > 0 {
			prev[i] = tails[k-1]
		} else {
			prev[i] = -1
		}
		if k == len(tails) {
			tails = append(tails, i)
		} else {
			tails[k] = i
		}
	}

	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		in[i] = true
	}
	return in
}

// Stats counts patches by operation.
type Stats struct {
	Created int
	Moved   int
	Removed int
}

// Count tallies patches.
func Count[K comparable](patches []Patch[K]) Stats {
	var s Stats
	for _, p := range patches {
		switch p.Op {
		case OpCreate:
			s.Created++
		case OpMove:
			s.Moved++
		case OpRemove:
			s.Removed++
		}
	}
	return s
}

// Total returns the number of operations.
func (s Stats) Total() int {
	return s.Created + s.Moved + s.Removed
}
