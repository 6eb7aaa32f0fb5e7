package network

import "fmt"

// Diff returns the edges of b missing from a (added) and the edges of a
// missing from b (removed). Added edges carry b's weights, removed edges
// a's.
//
// Complexity: O(|E_a| + |E_b|), a merge over the sorted edge lists.
func Diff(a, b *Graph) (added, removed []Edge, err error) {
	if a.n != b.n {
		return nil, nil, fmt.Errorf("Diff: %d vs %d nodes: %w", a.n, b.n, ErrOrderMismatch)
	}

	i, j := 0, 0
	for i < len(a.edges) && j < len(b.edges) {
		ea, eb := a.edges[i], b.edges[j]
		switch {
		case less(ea, eb):
			removed = append(removed, ea)
			i++
		case less(eb, ea):
			added = append(added, eb)
			j++
		default:
			i++
			j++
		}
	}
	removed = append(removed, a.edges[i:]...)
	added = append(added, b.edges[j:]...)

	return added, removed, nil
}

func less(x, y Edge) bool {
	if x.From != y.From {
		return x.From < y.From
	}

	return x.To < y.To
}
