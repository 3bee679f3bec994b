// Seat-grid geometry: coordinates, Manhattan distance, and spectator
// position lookups. Sections sit side by side, so a global coordinate
// space lets spatial processes straddle section borders.
package stadium

import "github.com/talgya/crowdwave/internal/spectator"

// SeatCoord is a row/column position within a section grid.
type SeatCoord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// SentinelCoord is returned when a position lookup fails. Recoverable:
// callers treat it as "not seated here" and no-op.
var SentinelCoord = SeatCoord{Row: -1, Col: -1}

// Manhattan returns the Manhattan grid distance between two coordinates.
func Manhattan(a, b SeatCoord) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SpectatorAt returns the occupant of a seat, or nil for an empty seat.
func (s *Section) SpectatorAt(row, col int) *spectator.Spectator {
	return s.grid[SeatCoord{Row: row, Col: col}]
}

// Column returns the occupants of one seating column, in row order.
func (s *Section) Column(col int) []*spectator.Spectator {
	var out []*spectator.Spectator
	for row := 0; row < s.Rows; row++ {
		if sp := s.grid[SeatCoord{Row: row, Col: col}]; sp != nil {
			out = append(out, sp)
		}
	}
	return out
}

// Locate returns the seat coordinate of a spectator claimed to be in this
// section, or SentinelCoord when the spectator isn't actually seated here.
func (s *Section) Locate(id spectator.ID) SeatCoord {
	for _, sp := range s.Spectators {
		if sp.ID == id {
			return SeatCoord{Row: sp.Row, Col: sp.Col}
		}
	}
	return SentinelCoord
}

// GlobalCoord maps a spectator's seat into the stadium-wide grid, with
// columns offset by section index.
func (st *Stadium) GlobalCoord(sp *spectator.Spectator) SeatCoord {
	sec := st.byID[sp.Section]
	if sec == nil {
		return SentinelCoord
	}
	return SeatCoord{Row: sp.Row, Col: sec.Index*sec.Cols + sp.Col}
}

// WithinRadius returns all spectators within the given Manhattan radius
// of the origin in the stadium-wide grid, origin included.
func (st *Stadium) WithinRadius(origin *spectator.Spectator, radius int) []*spectator.Spectator {
	center := st.GlobalCoord(origin)
	if center == SentinelCoord {
		return nil
	}
	var out []*spectator.Spectator
	for _, sec := range st.Sections {
		for _, sp := range sec.Spectators {
			if Manhattan(st.GlobalCoord(sp), center) <= radius {
				out = append(out, sp)
			}
		}
	}
	return out
}
