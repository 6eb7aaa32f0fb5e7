// SPDX-License-Identifier: MIT

package network

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/tvgl/matrix"
)

// Edge is an undirected edge with From < To, weighted by the partial
// correlation of its endpoints.
type Edge struct {
	From   int     `yaml:"from"`
	To     int     `yaml:"to"`
	Weight float64 `yaml:"weight"`
}

// Graph is the support graph of one precision matrix. It is immutable
// once built.
type Graph struct {
	n     int
	adj   [][]int // sorted neighbour lists
	edges []Edge  // sorted by (From, To)
}

// FromPrecision builds the graph of k weighted by partial correlations.
// Only the upper triangle is read.
//
// Complexity: O(p²).
func FromPrecision(k mat.Matrix, threshold float64) (*Graph, error) {
	g, err := build(k, threshold, true)
	if err != nil {
		return nil, fmt.Errorf("FromPrecision: %w", err)
	}

	return g, nil
}

// FromInteractions builds the graph of an Ising interaction matrix. Edge
// weights are the couplings K_ij themselves; the diagonal holds external
// fields and is ignored.
func FromInteractions(k mat.Matrix, threshold float64) (*Graph, error) {
	g, err := build(k, threshold, false)
	if err != nil {
		return nil, fmt.Errorf("FromInteractions: %w", err)
	}

	return g, nil
}

// ValidateThreshold rejects a negative or NaN edge threshold.
func ValidateThreshold(threshold float64) error {
	if threshold < 0 || math.IsNaN(threshold) {
		return fmt.Errorf("threshold=%v: %w", threshold, ErrThreshold)
	}

	return nil
}

func build(k mat.Matrix, threshold float64, partial bool) (*Graph, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	r, c := k.Dims()
	if r != c {
		return nil, fmt.Errorf("%dx%d: %w", r, c, ErrNotSquare)
	}

	diag := make([]float64, r)
	for i := range diag {
		if !partial {
			continue
		}
		if diag[i] = k.At(i, i); !(diag[i] > 0) {
			return nil, fmt.Errorf("K[%d,%d]=%v: %w", i, i, diag[i], ErrDiagonal)
		}
	}

	g := &Graph{n: r, adj: make([][]int, r)}
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			v := k.At(i, j)
			if !(math.Abs(v) > threshold) {
				continue
			}
			w := v
			if partial {
				w = -v / math.Sqrt(diag[i]*diag[j])
			}
			g.edges = append(g.edges, Edge{From: i, To: j, Weight: w})
			g.adj[i] = append(g.adj[i], j)
			g.adj[j] = append(g.adj[j], i)
		}
	}
	// smaller neighbours are appended before larger ones, so adj is sorted

	return g, nil
}

// Sequence returns one partial-correlation graph per time point of s.
func Sequence(s *matrix.Stack, threshold float64) ([]*Graph, error) {
	return sequence("Sequence", s, threshold, FromPrecision)
}

// InteractionSequence returns one interaction graph per time point of s.
func InteractionSequence(s *matrix.Stack, threshold float64) ([]*Graph, error) {
	return sequence("InteractionSequence", s, threshold, FromInteractions)
}

func sequence(op string, s *matrix.Stack, threshold float64, from func(mat.Matrix, float64) (*Graph, error)) ([]*Graph, error) {
	if s == nil {
		return nil, fmt.Errorf("%s: %w", op, matrix.ErrNilStack)
	}
	gs := make([]*Graph, s.Len())
	for t := range gs {
		g, err := from(s.At(t), threshold)
		if err != nil {
			return nil, fmt.Errorf("%s: t=%d: %w", op, t, err)
		}
		gs[t] = g
	}

	return gs, nil
}

// Order is the number of nodes.
func (g *Graph) Order() int { return g.n }

// Size is the number of edges.
func (g *Graph) Size() int { return len(g.edges) }

// Edges returns a copy of the edge list, sorted by (From, To).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)

	return out
}

// Neighbors returns the sorted neighbours of v; nil if v is out of range.
func (g *Graph) Neighbors(v int) []int {
	if v < 0 || v >= g.n {
		return nil
	}
	out := make([]int, len(g.adj[v]))
	copy(out, g.adj[v])

	return out
}

// Degree of v; 0 if v is out of range.
func (g *Graph) Degree(v int) int {
	if v < 0 || v >= g.n {
		return 0
	}

	return len(g.adj[v])
}

// HasEdge reports whether {u, v} is an edge.
func (g *Graph) HasEdge(u, v int) bool {
	if u < 0 || v < 0 || u >= g.n || v >= g.n {
		return false
	}
	for _, w := range g.adj[u] {
		if w == v {
			return true
		}
	}

	return false
}

// Density is |E| / (p(p-1)/2); 0 for p < 2.
func (g *Graph) Density() float64 {
	if g.n < 2 {
		return 0
	}

	return float64(len(g.edges)) / float64(g.n*(g.n-1)/2)
}
