// SPDX-License-Identifier: MIT

package prox

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// ProjectL1Ball writes the Euclidean projection of v onto {x : ‖x‖₁ <= radius}
// into dst (Duchi et al., 2008). dst may alias v; it panics unless
// len(dst) == len(v).
//
// Complexity: O(n log n) for the sort.
func ProjectL1Ball(dst, v []float64, radius float64) {
	mustSameLen("ProjectL1Ball", dst, v)
	if radius <= 0 {
		for i := range dst {
			dst[i] = 0
		}

		return
	}
	if floats.Norm(v, 1) <= radius {
		copy(dst, v)

		return
	}

	u := make([]float64, len(v))
	for i, x := range v {
		u[i] = math.Abs(x)
	}
	slices.Sort(u)
	slices.Reverse(u)

	var cum, theta float64
	for j, uj := range u {
		cum += uj
		t := (cum - radius) / float64(j+1)
		if uj-t <= 0 {
			break
		}
		theta = t
	}
	for i, x := range v {
		dst[i] = SoftThreshold(x, theta)
	}
}

// ProjectL2Ball writes the projection of v onto {x : ‖x‖₂ <= radius}.
// It panics unless len(dst) == len(v).
func ProjectL2Ball(dst, v []float64, radius float64) {
	mustSameLen("ProjectL2Ball", dst, v)
	n := floats.Norm(v, 2)
	if n <= radius {
		copy(dst, v)

		return
	}
	if radius <= 0 {
		for i := range dst {
			dst[i] = 0
		}

		return
	}
	floats.ScaleTo(dst, radius/n, v)
}

func mustSameLen(op string, dst, v []float64) {
	if len(dst) != len(v) {
		panic(fmt.Sprintf("prox: %s: len(dst)=%d, len(v)=%d", op, len(dst), len(v)))
	}
}
