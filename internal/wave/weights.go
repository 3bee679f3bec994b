// Section-position weighting for the autonomous trigger. Edge sections
// weigh roughly 1.5× the center, matching the real-crowd tendency for
// waves to start at the ends of a stand.
package wave

import "math"

// PositionWeight returns the selection weight for section index i of n:
// 0.5 + |i−center|/maxDistance. For n=1 both terms are zero and the
// result is NaN; callers must special-case single-section stadiums.
func PositionWeight(i, n int) float64 {
	center := float64(n-1) / 2
	maxDistance := math.Max(center, float64(n-1)-center)
	return 0.5 + math.Abs(float64(i)-center)/maxDistance
}

// WeightTable overrides specific (sectionCount, index) pairs. When a
// section count is present but the index is missing, the weight is the
// literal 1.0, not the computed default. That asymmetry is inherited
// behavior that downstream balance depends on; don't "fix" it here.
type WeightTable map[int]map[int]float64

// Weight resolves the weight for section index i of n against the table,
// falling back to PositionWeight only when n itself has no entry.
func (t WeightTable) Weight(i, n int) float64 {
	row, ok := t[n]
	if !ok {
		return PositionWeight(i, n)
	}
	if w, ok := row[i]; ok {
		return w
	}
	return 1.0
}
