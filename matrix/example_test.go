package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/tvgl/matrix"
)

// ExampleStack_Head shows the lagged views used by the consensus solver.
func ExampleStack_Head() {
	s, _ := matrix.NewStackFrom(3, 1, []float64{10, 20, 30})
	m := 1
	left, right := s.Head(m), s.Tail(m)
	for i := 0; i < left.Len(); i++ {
		fmt.Printf("pair %d: %.0f -> %.0f\n", i, left.Get(i, 0, 0), right.Get(i, 0, 0))
	}
	// Output:
	// pair 0: 10 -> 20
	// pair 1: 20 -> 30
}
