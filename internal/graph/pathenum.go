package graph

import "github.com/kjpark/graphminer/internal/schema"

// Path is a schema-level path: a sequence of property IDs of length at most
// MaxDepth, from the start class to some end class, with no property
// repeated.
type Path []int

// frontier is one entry on the DFS stack: the class currently reached, the
// property-ID path taken to reach it, and the parallel class path (kept for
// parity with the original implementation; unused downstream but retained
// since spec.md names it as part of the frontier entry).
type frontier struct {
	class    int
	path     []int
	classPath []int
}

// EnumeratePaths performs the depth-bounded DFS of spec.md section 4.3: an
// explicit-stack walk from startClass to any class in endClasses, never
// repeating a property within a path, discarding any path whose length
// reaches maxDepth (even one that has just reached an end class). A start
// class that is itself an end class yields no path: the empty path is
// never recorded.
//
// The returned order is LIFO (stack-pop order) as spec.md specifies;
// downstream consumers treat the result as an unordered set of paths. The
// second return value is the union of every property ID used by any
// returned path (path_property_set).
func EnumeratePaths(g *schema.Schema, startClass int, endClasses map[int]bool, maxDepth int) ([]Path, map[int]bool) {
	var result []Path
	propertySet := make(map[int]bool)

	stack := []frontier{{class: startClass, path: nil, classPath: []int{startClass}}}

	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]

		if len(cur.path) >= maxDepth {
			continue
		}

		if endClasses[cur.class] {
			if len(cur.path) == 0 {
				continue
			}
			p := make(Path, len(cur.path))
			copy(p, cur.path)
			result = append(result, p)
			for _, pid := range p {
				propertySet[pid] = true
			}
			continue
		}

		for _, edge := range g.Graph[cur.class] {
			if containsInt(cur.path, edge.PropID) {
				continue
			}
			nextPath := make([]int, len(cur.path)+1)
			copy(nextPath, cur.path)
			nextPath[len(cur.path)] = edge.PropID

			nextClassPath := make([]int, len(cur.classPath)+1)
			copy(nextClassPath, cur.classPath)
			nextClassPath[len(cur.classPath)] = edge.Neighbor

			stack = append(stack, frontier{
				class:     edge.Neighbor,
				path:      nextPath,
				classPath: nextClassPath,
			})
		}
	}

	return result, propertySet
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
