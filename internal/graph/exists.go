package graph

import "feedgraph/internal/core"

// Exists reports whether an a→b edge of the family exists in the given day
// bucket. It iterates from whichever endpoint has fewer matching edges and
// short-circuits on the first match, so the cost is bounded by the smaller
// degree regardless of how lopsided the relation is.
func (s *Store) Exists(a core.EntityID, family core.Family, day core.Day, b core.EntityID) bool {
	outDeg := s.Degree(a, family, day, core.Out)
	inDeg := s.Degree(b, family, day, core.In)

	if outDeg <= inDeg {
		for _, edge := range s.EdgesOf(a, family, day, core.Out) {
			if edge.To == b {
				return true
			}
		}
		return false
	}

	for _, edge := range s.EdgesOf(b, family, day, core.In) {
		if edge.From == a {
			return true
		}
	}
	return false
}

// FindEdge returns the a→b edge of the family, using the same smaller-side
// iteration as Exists.
func (s *Store) FindEdge(a core.EntityID, family core.Family, day core.Day, b core.EntityID) (*core.Edge, bool) {
	outDeg := s.Degree(a, family, day, core.Out)
	inDeg := s.Degree(b, family, day, core.In)

	if outDeg <= inDeg {
		for _, edge := range s.EdgesOf(a, family, day, core.Out) {
			if edge.To == b {
				return edge, true
			}
		}
		return nil, false
	}

	for _, edge := range s.EdgesOf(b, family, day, core.In) {
		if edge.From == a {
			return edge, true
		}
	}
	return nil, false
}
