package buildings

import "math"

// cellKey identifies one voxel cell on the horizontal plane by truncated
// coordinate division.
type cellKey struct {
	X, Z int
}

// keyFor maps a world position to its voxel cell.
func keyFor(x, z, cellSize float64) cellKey {
	return cellKey{
		X: int(math.Floor(x / cellSize)),
		Z: int(math.Floor(z / cellSize)),
	}
}

// voxelGrid buckets box indices by the voxel cell containing their center.
type voxelGrid struct {
	cellSize float64
	cells    map[cellKey][]int
}

func newVoxelGrid(cellSize float64) *voxelGrid {
	return &voxelGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
	}
}

func (g *voxelGrid) insert(x, z float64, boxIdx int) {
	key := keyFor(x, z, g.cellSize)
	g.cells[key] = append(g.cells[key], boxIdx)
}

// floodFrom collects the maximal 4-connected component of populated cells
// containing start, marking each as visited. Traversal is stack-based; a
// visited cell is never pushed twice, so components partition the grid.
func (g *voxelGrid) floodFrom(start cellKey, visited map[cellKey]bool) []cellKey {
	var component []cellKey
	stack := []cellKey{start}
	visited[start] = true

	for len(stack) > 0 {
		cell := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		component = append(component, cell)

		neighbors := [4]cellKey{
			{cell.X + 1, cell.Z},
			{cell.X - 1, cell.Z},
			{cell.X, cell.Z + 1},
			{cell.X, cell.Z - 1},
		}
		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			if _, populated := g.cells[nb]; !populated {
				continue
			}
			visited[nb] = true
			stack = append(stack, nb)
		}
	}
	return component
}
