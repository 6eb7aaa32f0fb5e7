package admm_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/katalvlaran/tvgl/admm"
	"github.com/katalvlaran/tvgl/kernel"
	"github.com/katalvlaran/tvgl/prox"
)

var sinkResult admm.Result

func BenchmarkSolveKernel(b *testing.B) {
	s := sampleCovariances(b, chainPrecision(10, 0.4), 8, 100)
	k, err := kernel.RBF(2, kernel.Times(8))
	if err != nil {
		b.Fatal(err)
	}
	for _, workers := range []int{1, 0} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				sinkResult, err = admm.SolveKernel(context.Background(), s, nil,
					admm.WithKernel(k, prox.L1),
					admm.WithTolerance(1e-300, 0, 20),
					admm.WithWorkers(workers),
				)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
