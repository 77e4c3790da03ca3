package entity

// Grid is the cell accessor FindGroup walks over.
type Grid interface {
	Stone(pos int) Stone
	Neighbours(pos int) []int
}

// Group is a connected set of same-coloured cells and the distinct cells bordering it.
type Group struct {
	Color    Stone
	Stones   []int
	Boundary []int
}

// FindGroup collects every cell of the given colour reachable from start through
// orthogonal adjacency. Color may be Empty, which yields territory regions.
// The result is empty when start does not hold that colour.
func FindGroup(grid Grid, start int, color Stone) Group {
	group := Group{Color: color}
	if grid.Stone(start) != color {
		return group
	}

	inGroup := map[int]bool{start: true}
	onBoundary := make(map[int]bool)
	queue := []int{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		group.Stones = append(group.Stones, current)

		for _, neighbour := range grid.Neighbours(current) {
			if grid.Stone(neighbour) == color {
				if !inGroup[neighbour] {
					inGroup[neighbour] = true
					queue = append(queue, neighbour)
				}
				continue
			}

			if !onBoundary[neighbour] {
				onBoundary[neighbour] = true
				group.Boundary = append(group.Boundary, neighbour)
			}
		}
	}

	return group
}

// Liberties counts the empty cells on the group boundary.
func (that Group) Liberties(grid Grid) int {
	liberties := 0
	for _, pos := range that.Boundary {
		if grid.Stone(pos) == Empty {
			liberties++
		}
	}
	return liberties
}

// BorderedOnlyBy reports whether every boundary cell holds the given colour.
// A group without boundary is bordered by nobody.
func (that Group) BorderedOnlyBy(grid Grid, color Stone) bool {
	if len(that.Boundary) == 0 {
		return false
	}

	for _, pos := range that.Boundary {
		if grid.Stone(pos) != color {
			return false
		}
	}
	return true
}
