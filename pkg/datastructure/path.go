package datastructure

// Path is an ordered sequence of node indices with its cumulative cost.
type Path struct {
	Nodes []int32
	Cost  float64
}

func (p Path) Equal(other Path) bool {
	if len(p.Nodes) != len(other.Nodes) {
		return false
	}
	for i := range p.Nodes {
		if p.Nodes[i] != other.Nodes[i] {
			return false
		}
	}
	return true
}
