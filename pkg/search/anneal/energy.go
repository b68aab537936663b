package anneal

import (
	"sort"

	"github.com/sunflower-search/sunflower/pkg/universe"
)

// Energy counts the 3-sunflowers in sets from scratch. Pairs are grouped by
// their intersection; within a group, a triangle of pairs is exactly three
// members whose pairwise intersections all equal the group's kernel.
func Energy(sets []universe.Set) int {
	groups := make(map[universe.Set][][2]int)
	for i := range sets {
		for j := i + 1; j < len(sets); j++ {
			k := sets[i] & sets[j]
			groups[k] = append(groups[k], [2]int{i, j})
		}
	}

	energy := 0
	for _, pairs := range groups {
		energy += triangles(pairs)
	}
	return energy
}

func triangles(pairs [][2]int) int {
	if len(pairs) < 3 {
		return 0
	}
	adj := make(map[int]map[int]bool)
	link := func(a, b int) {
		if adj[a] == nil {
			adj[a] = make(map[int]bool)
		}
		adj[a][b] = true
	}
	for _, p := range pairs {
		link(p[0], p[1])
		link(p[1], p[0])
	}

	nodes := make([]int, 0, len(adj))
	for v := range adj {
		nodes = append(nodes, v)
	}
	sort.Ints(nodes)

	count := 0
	for a := range nodes {
		u := nodes[a]
		for b := a + 1; b < len(nodes); b++ {
			v := nodes[b]
			if !adj[u][v] {
				continue
			}
			for c := b + 1; c < len(nodes); c++ {
				w := nodes[c]
				if adj[u][w] && adj[v][w] {
					count++
				}
			}
		}
	}
	return count
}

// involving counts the 3-sunflowers that x would form together with two
// members of sets other than the one at skip.
func involving(sets []universe.Set, skip int, x universe.Set) int {
	count := 0
	for j := range sets {
		if j == skip {
			continue
		}
		kernel := x & sets[j]
		for l := j + 1; l < len(sets); l++ {
			if l == skip {
				continue
			}
			if x&sets[l] == kernel && sets[j]&sets[l] == kernel {
				count++
			}
		}
	}
	return count
}
