package extract

// Unit is the empty tuple, produced by extractors that only filter.
type Unit struct{}

// One is a tuple of one extracted value.
type One[A any] struct {
	V0 A
}

// Two is a tuple of two extracted values, in extraction order.
type Two[A, B any] struct {
	V0 A
	V1 B
}

// Three is a tuple of three extracted values, in extraction order.
type Three[A, B, C any] struct {
	V0 A
	V1 B
	V2 C
}

// Four is a tuple of four extracted values, in extraction order.
type Four[A, B, C, D any] struct {
	V0 A
	V1 B
	V2 C
	V3 D
}

func Of[A any](a A) One[A] { return One[A]{a} }
func Of2[A, B any](a A, b B) Two[A, B] { return Two[A, B]{a, b} }
func Of3[A, B, C any](a A, b B, c C) Three[A, B, C] { return Three[A, B, C]{a, b, c} }
func Of4[A, B, C, D any](a A, b B, c C, d D) Four[A, B, C, D] { return Four[A, B, C, D]{a, b, c, d} }

// Concatenation of tuples. Each function appends the right tuple after the
// left one; the unit tuple is the identity on either side. Which function a
// pipeline uses is fixed when it is assembled, so the resulting shape is
// always a flat tuple known at compile time.

func Concat0X[R any](_ Unit, r R) R { return r }
func ConcatX0[L any](l L, _ Unit) L { return l }

func Concat11[A, B any](l One[A], r One[B]) Two[A, B] {
	return Two[A, B]{l.V0, r.V0}
}

func Concat21[A, B, C any](l Two[A, B], r One[C]) Three[A, B, C] {
	return Three[A, B, C]{l.V0, l.V1, r.V0}
}

func Concat12[A, B, C any](l One[A], r Two[B, C]) Three[A, B, C] {
	return Three[A, B, C]{l.V0, r.V0, r.V1}
}

func Concat31[A, B, C, D any](l Three[A, B, C], r One[D]) Four[A, B, C, D] {
	return Four[A, B, C, D]{l.V0, l.V1, l.V2, r.V0}
}

func Concat13[A, B, C, D any](l One[A], r Three[B, C, D]) Four[A, B, C, D] {
	return Four[A, B, C, D]{l.V0, r.V0, r.V1, r.V2}
}

func Concat22[A, B, C, D any](l Two[A, B], r Two[C, D]) Four[A, B, C, D] {
	return Four[A, B, C, D]{l.V0, l.V1, r.V0, r.V1}
}
