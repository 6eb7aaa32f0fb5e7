package network_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/network"
)

func ExampleGraph_Components() {
	k := mat.NewSymDense(4, []float64{
		1, -0.5, 0, 0,
		-0.5, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
	g, err := network.FromPrecision(k, 0)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(g.Edges())
	fmt.Println(g.Components())
	// Output:
	// [{0 1 0.5}]
	// [[0 1] [2] [3]]
}
