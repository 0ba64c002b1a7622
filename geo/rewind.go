package geo

// Rewind reverses the winding of every ring in place. Boundary polygons
// exported from OpenStreetMap are wound the wrong way for golang/geo loops.
func Rewind(polys [][][]Position) {
	for k := range polys {
		for j := range polys[k] {
			ring := polys[k][j]
			for i := len(ring)/2 - 1; i >= 0; i-- {
				opp := len(ring) - 1 - i
				ring[i], ring[opp] = ring[opp], ring[i]
			}
		}
	}
}
