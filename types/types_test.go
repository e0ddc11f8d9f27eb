package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Bar keys ignore orientation
		bk, err := NewBarKey([2]int{1, 0})
		assert.NoError(t, err)
		assert.Equal(t, BarKey(1<<32), bk)
		assert.Equal(t, [2]int{0, 1}, bk.Nodes())

		bk, err = NewBarKey([2]int{100, 1})
		assert.NoError(t, err)
		assert.Equal(t, BarKey(100*(1<<32)+1), bk)
		assert.Equal(t, [2]int{1, 100}, bk.Nodes())
		assert.Equal(t, "1-100", bk.String())

		_, err = NewBarKey([2]int{-1, 2})
		assert.Error(t, err)
	}
	{ // Duplicate bars in either orientation
		assert.Nil(t, DuplicateBars([][2]int{{0, 1}, {1, 2}, {-1, 2}, {-1, 2}}))
		dups := DuplicateBars([][2]int{{0, 1}, {1, 2}, {1, 0}, {2, 1}, {0, 1}})
		assert.Equal(t, "[0-1 1-2 0-1]", fmt.Sprint(dups))
	}
	{ // Names
		k, err := NewAnalysisKind(" Modal ")
		assert.NoError(t, err)
		assert.Equal(t, Analysis_Modal, k)
		assert.Equal(t, "modal", k.String())
		_, err = NewAnalysisKind("buckling")
		assert.Error(t, err)

		c, err := ParseComponent("Y")
		assert.NoError(t, err)
		assert.Equal(t, 1, c)
		c, err = ParseComponent("all")
		assert.NoError(t, err)
		assert.Equal(t, AllComponents, c)
		_, err = ParseComponent("q")
		assert.Error(t, err)
	}
}
