package stadium

import (
	"testing"

	"github.com/talgya/crowdwave/internal/spectator"
)

func seat(id uint64, row, col int, h, th, a float64) *spectator.Spectator {
	return &spectator.Spectator{
		ID:    spectator.ID(id),
		Row:   row,
		Col:   col,
		Stats: spectator.EngagementState{Happiness: h, Thirst: th, Attention: a},
	}
}

func TestManhattan(t *testing.T) {
	cases := []struct {
		a, b SeatCoord
		want int
	}{
		{SeatCoord{0, 0}, SeatCoord{0, 0}, 0},
		{SeatCoord{0, 0}, SeatCoord{2, 3}, 5},
		{SeatCoord{4, 1}, SeatCoord{1, 5}, 7},
	}
	for _, c := range cases {
		if got := Manhattan(c.a, c.b); got != c.want {
			t.Errorf("Manhattan(%v,%v)=%d want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestLocate_Sentinel(t *testing.T) {
	sec := NewSection("A", 0, 2, 2)
	sec.Place(seat(1, 0, 1, 50, 50, 50))

	if got := sec.Locate(spectator.ID(1)); got != (SeatCoord{Row: 0, Col: 1}) {
		t.Fatalf("Locate=%v want {0 1}", got)
	}
	if got := sec.Locate(spectator.ID(99)); got != SentinelCoord {
		t.Fatalf("Locate miss=%v want sentinel", got)
	}
}

func TestGlobalCoord_SectionOffset(t *testing.T) {
	secA := NewSection("A", 0, 2, 4)
	secB := NewSection("B", 1, 2, 4)
	spA := seat(1, 0, 3, 50, 50, 50)
	spB := seat(2, 0, 0, 50, 50, 50)
	secA.Place(spA)
	secB.Place(spB)
	st := FromSections(secA, secB)

	if got := st.GlobalCoord(spA); got != (SeatCoord{Row: 0, Col: 3}) {
		t.Fatalf("A coord=%v want {0 3}", got)
	}
	// Section B's column 0 sits right after section A's last column.
	if got := st.GlobalCoord(spB); got != (SeatCoord{Row: 0, Col: 4}) {
		t.Fatalf("B coord=%v want {0 4}", got)
	}

	orphan := seat(3, 0, 0, 50, 50, 50)
	orphan.Section = "Z"
	if got := st.GlobalCoord(orphan); got != SentinelCoord {
		t.Fatalf("orphan coord=%v want sentinel", got)
	}
}

func TestWithinRadius_CrossesSectionBorder(t *testing.T) {
	secA := NewSection("A", 0, 1, 4)
	secB := NewSection("B", 1, 1, 4)
	edge := seat(1, 0, 3, 50, 50, 50) // Global col 3
	near := seat(2, 0, 0, 50, 50, 50) // Global col 4, one step away
	far := seat(3, 0, 3, 50, 50, 50)  // Global col 7
	secA.Place(edge)
	secB.Place(near)
	secB.Place(far)
	st := FromSections(secA, secB)

	got := st.WithinRadius(edge, 2)
	if len(got) != 2 {
		t.Fatalf("within radius=%d spectators, want 2 (origin + neighbor)", len(got))
	}
	for _, sp := range got {
		if sp.ID == far.ID {
			t.Fatal("spectator outside the radius was included")
		}
	}
}

func TestColumn_RowOrder(t *testing.T) {
	sec := NewSection("A", 0, 3, 2)
	sec.Place(seat(3, 2, 1, 50, 50, 50))
	sec.Place(seat(1, 0, 1, 50, 50, 50))
	// Row 1 of column 1 left empty.

	col := sec.Column(1)
	if len(col) != 2 {
		t.Fatalf("column occupants=%d want 2", len(col))
	}
	if col[0].ID != spectator.ID(1) || col[1].ID != spectator.ID(3) {
		t.Fatal("column occupants out of row order")
	}
	if sec.SpectatorAt(1, 1) != nil {
		t.Fatal("empty seat should report nil")
	}
}

func TestAggregates_GenerationCaching(t *testing.T) {
	sec := NewSection("A", 0, 1, 2)
	sp := seat(1, 0, 0, 80, 20, 60)
	sec.Place(sp)
	sec.Place(seat(2, 0, 1, 40, 40, 40))
	st := FromSections(sec)

	agg := st.Aggregates(sec)
	if agg.AvgHappiness != 60 || agg.AvgThirst != 30 || agg.AvgAttention != 50 || agg.Count != 2 {
		t.Fatalf("aggregates=%+v", agg)
	}

	// A mutation without Invalidate still reads the cached values.
	sp.Stats.Happiness = 0
	if got := st.Aggregates(sec); got.AvgHappiness != 60 {
		t.Fatalf("stale read=%v want cached 60", got.AvgHappiness)
	}

	st.Invalidate()
	if got := st.Aggregates(sec); got.AvgHappiness != 20 {
		t.Fatalf("fresh read=%v want 20", got.AvgHappiness)
	}
}

func TestAggregates_DerivedMetrics(t *testing.T) {
	agg := Aggregates{AvgHappiness: 80, AvgThirst: 20, AvgAttention: 60}
	// 80*0.2 + 60*0.2 - 20*0.15
	if got := agg.EngagementBonus(); got != 25 {
		t.Fatalf("bonus=%v want 25", got)
	}
	if got := agg.Engagement(); got != 70 {
		t.Fatalf("engagement=%v want 70", got)
	}
}

func TestLowestAttentionSection(t *testing.T) {
	secA := NewSection("A", 0, 1, 2)
	secA.Place(seat(1, 0, 0, 50, 50, 80))
	secB := NewSection("B", 1, 1, 2)
	secB.Place(seat(2, 0, 0, 50, 50, 20))
	secEmpty := NewSection("C", 2, 1, 2)
	st := FromSections(secA, secB, secEmpty)

	if got := st.LowestAttentionSection(); got == nil || got.ID != "B" {
		t.Fatal("lowest-attention section should be B; empty sections excluded")
	}
	if st.Population() != 2 {
		t.Fatalf("population=%d want 2", st.Population())
	}
}

func TestSectionNames(t *testing.T) {
	cases := map[int]string{0: "A", 5: "F", 25: "Z", 26: "AA", 27: "AB"}
	for i, want := range cases {
		if got := sectionName(i); got != want {
			t.Errorf("sectionName(%d)=%q want %q", i, got, want)
		}
	}
}
