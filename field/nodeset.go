package field

import (
	"errors"
	"fmt"
)

var ErrBadGeometry = errors.New("field: invalid node set")

// NodeSet holds node coordinates [nNodes][dim]. It is never modified after
// construction and fields only keep a reference to it.
type NodeSet struct {
	xyz [][]float64
	dim int
}

func NewNodeSet(xyz [][]float64) (ns *NodeSet, err error) {
	if len(xyz) == 0 {
		err = fmt.Errorf("%w: no nodes", ErrBadGeometry)
		return
	}
	dim := len(xyz[0])
	if dim < 1 || dim > 3 {
		err = fmt.Errorf("%w: spatial dimension %d not in [1,3]", ErrBadGeometry, dim)
		return
	}
	coords := make([][]float64, len(xyz))
	for i, x := range xyz {
		if len(x) != dim {
			err = fmt.Errorf("%w: node %d has %d coordinates, expected %d",
				ErrBadGeometry, i, len(x), dim)
			return
		}
		coords[i] = append([]float64(nil), x...)
	}
	ns = &NodeSet{xyz: coords, dim: dim}
	return
}

func (ns *NodeSet) Count() int { return len(ns.xyz) }
func (ns *NodeSet) Dim() int   { return ns.dim }

// XYZ returns the coordinates of node i. The slice must not be modified.
func (ns *NodeSet) XYZ(i int) []float64 { return ns.xyz[i] }
