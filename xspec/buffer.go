package xspec

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Real is the element type of parameter, grid and flux buffers.
type Real interface {
	constraints.Float
}

// Buffer is a shaped view over a flat slice. Adapters accept only rank-1
// buffers; the shape exists so that callers holding matrices get a
// DimensionalityError instead of a silently flattened call.
//
// The zero Buffer is an empty vector.
type Buffer[T Real] struct {
	data  []T
	shape []int
}

// Vec wraps data as a rank-1 buffer. The slice is not copied.
func Vec[T Real](data []T) Buffer[T] {
	return Buffer[T]{data: data, shape: []int{len(data)}}
}

// Reshape wraps data with the given dimensions, which must multiply out to
// len(data).
func Reshape[T Real](data []T, shape ...int) (Buffer[T], error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return Buffer[T]{}, fmt.Errorf("%w: negative dimension %d", ErrInvalidShape, d)
		}
		n *= d
	}
	if n != len(data) {
		return Buffer[T]{}, fmt.Errorf("%w: shape %v needs %d elements, have %d", ErrInvalidShape, shape, n, len(data))
	}
	dims := make([]int, len(shape))
	copy(dims, shape)
	return Buffer[T]{data: data, shape: dims}, nil
}

// Rank returns the number of dimensions.
func (b Buffer[T]) Rank() int {
	if b.shape == nil {
		return 1
	}
	return len(b.shape)
}

// Len returns the total number of elements.
func (b Buffer[T]) Len() int { return len(b.data) }

// Data returns the underlying slice.
func (b Buffer[T]) Data() []T { return b.data }

// Shape returns a copy of the dimensions.
func (b Buffer[T]) Shape() []int {
	if b.shape == nil {
		return []int{len(b.data)}
	}
	dims := make([]int, len(b.shape))
	copy(dims, b.shape)
	return dims
}
