// Package bcs applies essential (prescribed displacement) boundary conditions
// to a nodal field.
package bcs

import (
	"fmt"

	"github.com/notargets/gofea/field"
	"github.com/notargets/gofea/types"
)

// AllComponents targets every component of the listed nodes.
const AllComponents = types.AllComponents

// Essential prescribes Displacement on Component of every node in NodeList.
// An unset Displacement prescribes zero.
type Essential struct {
	NodeList     []int
	Component    int
	Displacement field.Value
}

// Fix clamps every component of nodes to zero.
func Fix(nodes ...int) Essential {
	return Essential{NodeList: nodes, Component: AllComponents}
}

// Apply marks the targets of every record FIXED with their prescribed values
// and finally copies the prescribed values into u. With no records every
// entry stays FREE.
func Apply(u *field.Field, ebcs []Essential) (err error) {
	nodes := u.Nodes()
	for i, bc := range ebcs {
		for _, n := range bc.NodeList {
			if n < 0 || n >= u.NNodes() {
				return fmt.Errorf("essential bc %d: %w: node %d of %d",
					i, field.ErrOutOfRange, n, u.NNodes())
			}
			// A function is evaluated at each node; a constant broadcasts.
			val := bc.Displacement.Scalar(nodes.XYZ(n))
			if err = fix(u, n, bc.Component, val); err != nil {
				return fmt.Errorf("essential bc %d: %w", i, err)
			}
		}
	}
	u.ApplyEBC()
	return
}

func fix(u *field.Field, node, comp int, val float64) (err error) {
	if comp != AllComponents {
		return u.SetEBC(node, comp, val)
	}
	for c := 0; c < u.NComp(); c++ {
		if err = u.SetEBC(node, c, val); err != nil {
			return
		}
	}
	return
}
