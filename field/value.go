package field

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	Unset ValueKind = iota
	ConstantKind
	FunctionKind
)

// Value is either a constant vector or a function of nodal coordinates.
// The zero Value is Unset and resolves to zero wherever zero is the default.
type Value struct {
	kind     ValueKind
	constant []float64
	fn       func(xyz []float64) []float64
}

func Constant(v ...float64) Value {
	c := make([]float64, len(v))
	copy(c, v)
	return Value{kind: ConstantKind, constant: c}
}

func Function(fn func(xyz []float64) []float64) Value {
	if fn == nil {
		return Value{}
	}
	return Value{kind: FunctionKind, fn: fn}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsSet() bool     { return v.kind != Unset }

// At resolves the value at the given coordinates. Unset returns nil.
func (v Value) At(xyz []float64) []float64 {
	switch v.kind {
	case ConstantKind:
		return v.constant
	case FunctionKind:
		return v.fn(xyz)
	}
	return nil
}

// Scalar resolves the first component at xyz, zero when there is none.
func (v Value) Scalar(xyz []float64) float64 {
	r := v.At(xyz)
	if len(r) == 0 {
		return 0
	}
	return r[0]
}

// Vector resolves the value at xyz padded or truncated to n components.
// A single constant component is not broadcast.
func (v Value) Vector(xyz []float64, n int) []float64 {
	var (
		r   = v.At(xyz)
		out = make([]float64, n)
	)
	copy(out, r)
	return out
}
