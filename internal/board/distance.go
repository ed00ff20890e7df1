package board

// Unreachable is returned by ShortestPath when no walkable route exists.
const Unreachable = -1

// VoidSet is a set of impassable cells.
type VoidSet map[Coordinate]struct{}

// Has reports whether c is void
func (v VoidSet) Has(c Coordinate) bool {
	_, ok := v[c]
	return ok
}

func (v VoidSet) clone() VoidSet {
	out := make(VoidSet, len(v))
	for c := range v {
		out[c] = struct{}{}
	}
	return out
}

// Manhattan returns |dcol| + |drow|.
func Manhattan(a, b Coordinate) int {
	return abs(a.Col-b.Col) + abs(a.Row-b.Row)
}

// ShortestPath returns the number of king moves from one cell to another
// without stepping on a void, or Unreachable. The destination itself is
// accepted even if it is void.
func ShortestPath(from, to Coordinate, voids VoidSet) int {
	if from == to {
		return 0
	}

	type node struct {
		at   Coordinate
		dist int
	}
	visited := map[Coordinate]bool{from: true}
	queue := []node{{at: from}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, d := range directions {
			next, ok := cur.at.Offset(d[0], d[1])
			if !ok {
				continue
			}
			if next == to {
				return cur.dist + 1
			}
			if !visited[next] && !voids.Has(next) {
				visited[next] = true
				queue = append(queue, node{at: next, dist: cur.dist + 1})
			}
		}
	}
	return Unreachable
}

// connected reports whether Start can still reach Goal.
func connected(voids VoidSet) bool {
	return ShortestPath(Start, Goal, voids) != Unreachable
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
