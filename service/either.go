package service

import "fmt"

// Side names an arm of an Either.
type Side uint8

const (
	SideLeft Side = iota + 1
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "none"
	}
}

// Either holds a value produced by one of two alternatives.
type Either[L, R any] struct {
	side  Side
	left  L
	right R
}

// Left builds an Either holding the first alternative's value.
func Left[L, R any](v L) Either[L, R] {
	return Either[L, R]{side: SideLeft, left: v}
}

// Right builds an Either holding the second alternative's value.
func Right[L, R any](v R) Either[L, R] {
	return Either[L, R]{side: SideRight, right: v}
}

func (e Either[L, R]) Side() Side    { return e.side }
func (e Either[L, R]) IsLeft() bool  { return e.side == SideLeft }
func (e Either[L, R]) IsRight() bool { return e.side == SideRight }

// LeftValue returns the left value and whether the Either holds it.
func (e Either[L, R]) LeftValue() (L, bool) { return e.left, e.side == SideLeft }

// RightValue returns the right value and whether the Either holds it.
func (e Either[L, R]) RightValue() (R, bool) { return e.right, e.side == SideRight }

func (e Either[L, R]) String() string {
	if e.side == SideRight {
		return fmt.Sprintf("Right(%v)", e.right)
	}
	return fmt.Sprintf("Left(%v)", e.left)
}

// Fold reduces an Either to a single value.
func Fold[T, L, R any](e Either[L, R], left func(L) T, right func(R) T) T {
	if e.side == SideRight {
		return right(e.right)
	}
	return left(e.left)
}

// Merge collapses an Either whose arms share a type.
func Merge[T any](e Either[T, T]) T {
	if e.side == SideRight {
		return e.right
	}
	return e.left
}

// EitherError records which alternative produced a failure.
type EitherError struct {
	Side Side
	Err  error
}

func (e *EitherError) Error() string {
	return fmt.Sprintf("%s alternative: %v", e.Side, e.Err)
}

func (e *EitherError) Unwrap() error { return e.Err }
