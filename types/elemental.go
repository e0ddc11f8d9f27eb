package types

import (
	"fmt"
	"math"
)

// BarKey identifies a bar by its two end nodes, independent of orientation.
// The smaller node index is held in the low 32 bits.
type BarKey uint64

func NewBarKey(nodes [2]int) (bk BarKey, err error) {
	lo, hi := nodes[0], nodes[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 || uint64(hi) > math.MaxUint32 {
		err = fmt.Errorf("bar %v: node index outside [0,%d]", nodes, uint64(math.MaxUint32))
		return
	}
	bk = BarKey(uint64(hi)<<32 | uint64(lo))
	return
}

// Nodes returns the end nodes in ascending order.
func (bk BarKey) Nodes() [2]int {
	return [2]int{int(bk & math.MaxUint32), int(bk >> 32)}
}

func (bk BarKey) String() string {
	n := bk.Nodes()
	return fmt.Sprintf("%d-%d", n[0], n[1])
}

// DuplicateBars returns the bars of conn listed more than once, in either
// orientation, in the order their repeats appear. Bars with an invalid node
// are left to the element checks.
func DuplicateBars(conn [][2]int) (dups []BarKey) {
	seen := make(map[BarKey]bool, len(conn))
	for _, c := range conn {
		bk, err := NewBarKey(c)
		if err != nil {
			continue
		}
		if seen[bk] {
			dups = append(dups, bk)
		}
		seen[bk] = true
	}
	return
}
