package utils

const (
	// NODETOL is the tolerance below which a pivot or eigenvalue is treated as zero.
	NODETOL = 1.e-12
)

type EvalOp uint8

const (
	Equal EvalOp = iota
	Less
	Greater
	LessOrEqual
	GreaterOrEqual
)
