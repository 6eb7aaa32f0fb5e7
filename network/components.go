package network

// walker carries the state of a breadth-first sweep over all nodes.
type walker struct {
	g       *Graph
	queue   []int
	visited []bool
}

// Components returns the connected components of g. Each component lists
// its nodes in BFS order from its smallest node; components are ordered by
// that smallest node. Isolated nodes form singleton components.
//
// Complexity: O(p + |E|).
func (g *Graph) Components() [][]int {
	w := &walker{g: g, queue: make([]int, 0, g.n), visited: make([]bool, g.n)}

	var comps [][]int
	for v := 0; v < g.n; v++ {
		if w.visited[v] {
			continue
		}
		comps = append(comps, w.sweep(v))
	}

	return comps
}

// sweep visits every node reachable from root.
func (w *walker) sweep(root int) []int {
	var order []int
	w.enqueue(root)
	for len(w.queue) > 0 {
		v := w.dequeue()
		order = append(order, v)
		for _, nbr := range w.g.adj[v] {
			if !w.visited[nbr] {
				w.enqueue(nbr)
			}
		}
	}

	return order
}

func (w *walker) enqueue(v int) {
	w.visited[v] = true
	w.queue = append(w.queue, v)
}

func (w *walker) dequeue() int {
	v := w.queue[0]
	w.queue = w.queue[1:]

	return v
}
