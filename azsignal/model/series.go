package model

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Series is an ordered sequence of numeric values aligned with a
// dataframe's time index.
type Series[T constraints.Ordered] []T

func (s Series[T]) Values() []T {
	return s
}

// Last returns the value at `position` bars back from the end of the
// series. Last(0) is the most recent value.
func (s Series[T]) Last(position int) T {
	return s[len(s)-1-position]
}

// LastValues returns up to `size` values from the end of the series.
func (s Series[T]) LastValues(size int) []T {
	if l := len(s); l > size {
		return s[l-size:]
	}
	return s
}

// Crossover reports whether the series crossed above `ref` on the last bar.
func (s Series[T]) Crossover(ref Series[T]) bool {
	if len(s) < 2 || len(ref) < 2 {
		return false
	}
	return s.Last(0) > ref.Last(0) && s.Last(1) <= ref.Last(1)
}

// Crossunder reports whether the series crossed below `ref` on the last bar.
func (s Series[T]) Crossunder(ref Series[T]) bool {
	if len(s) < 2 || len(ref) < 2 {
		return false
	}
	return s.Last(0) <= ref.Last(0) && s.Last(1) > ref.Last(1)
}

// Defined reports whether the value at index i exists and is not NaN.
// Indicator columns carry NaN over their warm-up span.
func Defined(s Series[float64], i int) bool {
	return i >= 0 && i < len(s) && !math.IsNaN(s[i])
}
