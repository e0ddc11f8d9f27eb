package field

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// NoEquation is the equation number carried by FIXED entries.
const NoEquation = -1

var ErrOutOfRange = errors.New("field: node or component out of range")

// Field is a nodal field of nComp components per node. Storage is row major:
// entry (node, comp) lives at node*nComp + comp.
type Field struct {
	Name        string
	nodes       *NodeSet
	nNodes      int
	nComp       int
	values      []float64
	isFixed     []bool
	fixedValues []float64
	dofnums     []int
	nFree       int
	numbered    bool
}

// New creates an all FREE, zero valued field with nComp components per node.
func New(name string, nodes *NodeSet, nComp int) (f *Field) {
	n := nodes.Count() * nComp
	f = &Field{
		Name:        name,
		nodes:       nodes,
		nNodes:      nodes.Count(),
		nComp:       nComp,
		values:      make([]float64, n),
		isFixed:     make([]bool, n),
		fixedValues: make([]float64, n),
		dofnums:     make([]int, n),
	}
	for i := range f.dofnums {
		f.dofnums[i] = NoEquation
	}
	return
}

// NewGeometry returns the geometry field: one component per spatial
// dimension, valued with the node coordinates.
func NewGeometry(nodes *NodeSet) (f *Field) {
	f = New("geom", nodes, nodes.Dim())
	for i := 0; i < f.nNodes; i++ {
		copy(f.values[i*f.nComp:(i+1)*f.nComp], nodes.XYZ(i))
	}
	return
}

// FromValue builds a scalar field by resolving v at every node.
func FromValue(name string, nodes *NodeSet, v Value) (f *Field) {
	f = New(name, nodes, 1)
	if !v.IsSet() {
		return
	}
	for i := 0; i < f.nNodes; i++ {
		f.values[i] = v.Scalar(nodes.XYZ(i))
	}
	return
}

func (f *Field) Nodes() *NodeSet { return f.nodes }
func (f *Field) NNodes() int     { return f.nNodes }
func (f *Field) NComp() int      { return f.nComp }

// NFree is the number of free degrees of freedom found by the last NumberDOFs.
func (f *Field) NFree() int     { return f.nFree }
func (f *Field) Numbered() bool { return f.numbered }

func (f *Field) index(node, comp int) (int, error) {
	if node < 0 || node >= f.nNodes || comp < 0 || comp >= f.nComp {
		return 0, fmt.Errorf("%w: (%d,%d) in field %q of %dx%d",
			ErrOutOfRange, node, comp, f.Name, f.nNodes, f.nComp)
	}
	return node*f.nComp + comp, nil
}

func (f *Field) At(node, comp int) float64         { return f.values[node*f.nComp+comp] }
func (f *Field) IsFixed(node, comp int) bool       { return f.isFixed[node*f.nComp+comp] }
func (f *Field) FixedValue(node, comp int) float64 { return f.fixedValues[node*f.nComp+comp] }
func (f *Field) EqNum(node, comp int) int          { return f.dofnums[node*f.nComp+comp] }

// NodeValues returns a copy of the values of one node.
func (f *Field) NodeValues(node int) []float64 {
	return append([]float64(nil), f.values[node*f.nComp:(node+1)*f.nComp]...)
}

// SetEBC marks (node, comp) FIXED with the prescribed value val. Values are
// only copied into the field by ApplyEBC.
func (f *Field) SetEBC(node, comp int, val float64) (err error) {
	var ind int
	if ind, err = f.index(node, comp); err != nil {
		return
	}
	f.isFixed[ind] = true
	f.fixedValues[ind] = val
	return
}

// ApplyEBC copies the prescribed values into the values of FIXED entries.
func (f *Field) ApplyEBC() {
	for i, fixed := range f.isFixed {
		if fixed {
			f.values[i] = f.fixedValues[i]
		}
	}
}

// NumberDOFs numbers the FREE entries node by node, component by component,
// starting from zero. FIXED entries get NoEquation. Calling it again after the
// constraints change renumbers from scratch.
func (f *Field) NumberDOFs() (nFree int) {
	for i, fixed := range f.isFixed {
		if fixed {
			f.dofnums[i] = NoEquation
			continue
		}
		f.dofnums[i] = nFree
		nFree++
	}
	f.nFree = nFree
	f.numbered = true
	return
}

// EqNums returns the equation numbers of the listed nodes, node major.
func (f *Field) EqNums(nodes []int) (eqs []int) {
	eqs = make([]int, 0, len(nodes)*f.nComp)
	for _, n := range nodes {
		eqs = append(eqs, f.dofnums[n*f.nComp:(n+1)*f.nComp]...)
	}
	return
}

// GatherFixedValues returns the prescribed values of the listed nodes, node
// major, with zeros in the FREE entries.
func (f *Field) GatherFixedValues(nodes []int) (vals []float64) {
	vals = make([]float64, len(nodes)*f.nComp)
	for i, n := range nodes {
		for c := 0; c < f.nComp; c++ {
			ind := n*f.nComp + c
			if f.isFixed[ind] {
				vals[i*f.nComp+c] = f.fixedValues[ind]
			}
		}
	}
	return
}

// GatherValues returns the values of the listed nodes, node major.
func (f *Field) GatherValues(nodes []int) (vals []float64) {
	vals = make([]float64, 0, len(nodes)*f.nComp)
	for _, n := range nodes {
		vals = append(vals, f.values[n*f.nComp:(n+1)*f.nComp]...)
	}
	return
}

// Sysvec gathers the FREE values into a vector indexed by equation number.
func (f *Field) Sysvec() *mat.VecDense {
	if f.nFree == 0 {
		return &mat.VecDense{}
	}
	v := mat.NewVecDense(f.nFree, nil)
	for i, eq := range f.dofnums {
		if eq != NoEquation {
			v.SetVec(eq, f.values[i])
		}
	}
	return v
}

// ScatterSysvec writes U into the FREE entries. FIXED entries are untouched.
func (f *Field) ScatterSysvec(U mat.Vector) error {
	if !f.numbered {
		return fmt.Errorf("field %q: scatter before numbering", f.Name)
	}
	var n int
	if U != nil {
		n = U.Len()
	}
	if n != f.nFree {
		return fmt.Errorf("field %q: system vector length %d, expected %d", f.Name, n, f.nFree)
	}
	for i, eq := range f.dofnums {
		if eq != NoEquation {
			f.values[i] = U.AtVec(eq)
		}
	}
	return nil
}

// Copy returns a deep copy sharing only the node set.
func (f *Field) Copy() *Field {
	return &Field{
		Name:        f.Name,
		nodes:       f.nodes,
		nNodes:      f.nNodes,
		nComp:       f.nComp,
		values:      append([]float64(nil), f.values...),
		isFixed:     append([]bool(nil), f.isFixed...),
		fixedValues: append([]float64(nil), f.fixedValues...),
		dofnums:     append([]int(nil), f.dofnums...),
		nFree:       f.nFree,
		numbered:    f.numbered,
	}
}
