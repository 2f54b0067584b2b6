package xspec

// MinGridEdges is the smallest energy grid accepted: two bins.
const MinGridEdges = 3

// ValidateParamCount checks a parameter vector against a model's arity.
func ValidateParamCount(expected, got int) error {
	if expected != got {
		return &ParameterCountError{Expected: expected, Got: got}
	}
	return nil
}

// ValidateGridSize checks an energy grid has at least MinGridEdges edges.
func ValidateGridSize(gridLen int) error {
	if gridLen < MinGridEdges {
		return &GridTooSmallError{Got: gridLen}
	}
	return nil
}

// ValidateGridConsistency checks that an output buffer has one element
// fewer than the grid.
func ValidateGridConsistency(gridLen, outputLen int) error {
	if gridLen != outputLen+1 {
		return &GridSizeError{GridLen: gridLen, OutputLen: outputLen}
	}
	return nil
}

// ValidateRank checks that b is one-dimensional.
func ValidateRank[T Real](name string, b Buffer[T]) error {
	if r := b.Rank(); r != 1 {
		return &DimensionalityError{Argument: name, Rank: r}
	}
	return nil
}
