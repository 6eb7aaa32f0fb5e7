// Package matrix_test provides benchmarks for the per-slice spectral kernels.
package matrix_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/katalvlaran/tvgl/matrix"
)

var benchDims = []int{10, 50, 100}

// sinks to defeat dead-code elimination
var (
	sinkE []matrix.Eigen
	sinkF float64
)

func BenchmarkDecomposeStack(b *testing.B) {
	b.ReportAllocs()
	for _, p := range benchDims {
		b.Run(fmt.Sprintf("p=%d", p), func(b *testing.B) {
			s := randomSPDStack(b, 1, 8, p)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				es, err := matrix.DecomposeStack(context.Background(), s, 0)
				if err != nil {
					b.Fatal(err)
				}
				sinkE = es
			}
		})
	}
}

func BenchmarkUpperDistance(b *testing.B) {
	b.ReportAllocs()
	x := randomSPDStack(b, 2, 16, 100)
	y := randomSPDStack(b, 3, 16, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sinkF = matrix.UpperDistance(x, y)
	}
}
