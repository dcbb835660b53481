package match

// Cluster groups candidates whose Chebyshev distance is at most radius
// (transitively) and returns the bounding envelope of each group, in order of
// each group's first candidate. Quadratic in len(cands).
func Cluster(cands []Candidate, radius int) []Region {
	visited := make([]bool, len(cands))
	var regions []Region
	for i, c := range cands {
		if visited[i] {
			continue
		}
		visited[i] = true
		r := Region{Left: c.X, Top: c.Y, Right: c.X, Bottom: c.Y}
		queue := []int{i}
		for head := 0; head < len(queue); head++ {
			p := cands[queue[head]]
			r.Left, r.Right = min(r.Left, p.X), max(r.Right, p.X)
			r.Top, r.Bottom = min(r.Top, p.Y), max(r.Bottom, p.Y)
			for j, q := range cands {
				if visited[j] || abs(q.X-p.X) > radius || abs(q.Y-p.Y) > radius {
					continue
				}
				visited[j] = true
				queue = append(queue, j)
			}
		}
		regions = append(regions, r)
	}
	return regions
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
