package utils

// Index is a list of integer indices, used for element equation numbers.
type Index []int

// Find returns the positions in I of the values that satisfy op against target.
func (I Index) Find(op EvalOp, target int) (J Index) {
	for i, val := range I {
		var hit bool
		switch op {
		case Equal:
			hit = val == target
		case Less:
			hit = val < target
		case Greater:
			hit = val > target
		case LessOrEqual:
			hit = val <= target
		case GreaterOrEqual:
			hit = val >= target
		}
		if hit {
			J = append(J, i)
		}
	}
	return
}

// Max returns the largest entry, or -1 for an empty Index.
func (I Index) Max() (m int) {
	m = -1
	for _, val := range I {
		if val > m {
			m = val
		}
	}
	return
}
