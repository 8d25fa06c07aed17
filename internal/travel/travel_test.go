package travel

import (
	"testing"

	"github.com/roddenjw/plotline/internal/model"
)

func TestCanonicalPair(t *testing.T) {
	tests := []struct {
		a, b, wantA, wantB string
	}{
		{"city-a", "city-b", "city-a", "city-b"},
		{"city-b", "city-a", "city-a", "city-b"},
		{"same", "same", "same", "same"},
	}
	for _, tt := range tests {
		gotA, gotB := CanonicalPair(tt.a, tt.b)
		if gotA != tt.wantA || gotB != tt.wantB {
			t.Errorf("CanonicalPair(%q, %q) = (%q, %q), want (%q, %q)",
				tt.a, tt.b, gotA, gotB, tt.wantA, tt.wantB)
		}
	}
}

func TestDistanceGraphSymmetry(t *testing.T) {
	g := NewDistanceGraph([]model.LocationDistance{
		{LocA: "city-b", LocB: "city-a", Km: 100},
		{LocA: "city-a", LocB: "city-c", Km: 0},
	})

	for _, pair := range [][2]string{{"city-a", "city-b"}, {"city-b", "city-a"}} {
		km, ok := g.Lookup(pair[0], pair[1])
		if !ok || km != 100 {
			t.Errorf("Lookup(%q, %q) = (%v, %v), want (100, true)", pair[0], pair[1], km, ok)
		}
	}

	// Zero is a stored fact, distinct from unknown
	km, ok := g.Lookup("city-c", "city-a")
	if !ok || km != 0 {
		t.Errorf("expected stored zero distance, got (%v, %v)", km, ok)
	}

	if _, ok := g.Lookup("city-a", "nowhere"); ok {
		t.Error("expected unknown pair to report ok=false")
	}
}

func TestResolveSpeedFallback(t *testing.T) {
	p := &model.TravelSpeedProfile{
		Speeds:       map[string]float64{"horse": 30, "dragon": 120},
		DefaultSpeed: 5,
	}

	tests := []struct {
		mode string
		want float64
	}{
		{"horse", 30},
		{"dragon", 120},
		{"Dragon", 5}, // case-sensitive: unconfigured casing falls back
		{"magic_portal", 5},
		{"", 5},
	}
	for _, tt := range tests {
		if got := ResolveSpeed(p, tt.mode); got != tt.want {
			t.Errorf("ResolveSpeed(%q) = %v, want %v", tt.mode, got, tt.want)
		}
	}

	if got := ResolveSpeed(nil, "horse"); got != model.DefaultSpeedKmh {
		t.Errorf("nil profile should resolve to built-in default, got %v", got)
	}
}

func hoursPtr(h float64) *float64 { return &h }

func testCalculator(hoursPerStep float64) *Calculator {
	return &Calculator{
		Graph: NewDistanceGraph([]model.LocationDistance{
			{LocA: "city-a", LocB: "city-b", Km: 100},
		}),
		Profile: &model.TravelSpeedProfile{
			Speeds:       map[string]float64{"horse": 50, "broken": 0},
			DefaultSpeed: 5,
			HoursPerStep: hoursPerStep,
		},
	}
}

func TestFeasibilityBoundary(t *testing.T) {
	calc := testCalculator(24)

	dep := &model.Event{ID: "e1", OrderIndex: 0, LocationID: "city-a", StoryHours: hoursPtr(0)}
	arr := &model.Event{ID: "e2", OrderIndex: 1, LocationID: "city-b", TravelMode: "horse", StoryHours: hoursPtr(2)}

	// 100 km at 50 km/h needs exactly 2 h; equality counts as feasible
	leg := calc.ComputeLeg("Hero", dep, arr)
	if leg.Verdict != model.VerdictFeasible {
		t.Errorf("exact-fit travel should be feasible, got %s", leg.Verdict)
	}
	if leg.RequiredHours != 2 {
		t.Errorf("expected required 2h, got %v", leg.RequiredHours)
	}

	arr.StoryHours = hoursPtr(1.99)
	leg = calc.ComputeLeg("Hero", dep, arr)
	if leg.Verdict != model.VerdictInfeasible {
		t.Errorf("1.99h available for 2h of travel should be infeasible, got %s", leg.Verdict)
	}
}

func TestComputeLegUnknownDistance(t *testing.T) {
	calc := testCalculator(24)

	dep := &model.Event{ID: "e1", OrderIndex: 0, LocationID: "city-a"}
	arr := &model.Event{ID: "e2", OrderIndex: 1, LocationID: "nowhere"}

	leg := calc.ComputeLeg("Hero", dep, arr)
	if leg.Verdict != model.VerdictUnknown {
		t.Errorf("missing distance must yield unknown verdict, got %s", leg.Verdict)
	}
}

func TestComputeLegBadSpeed(t *testing.T) {
	calc := testCalculator(24)

	dep := &model.Event{ID: "e1", OrderIndex: 0, LocationID: "city-a"}
	arr := &model.Event{ID: "e2", OrderIndex: 1, LocationID: "city-b", TravelMode: "broken"}

	leg := calc.ComputeLeg("Hero", dep, arr)
	if leg.Verdict != model.VerdictBadSpeed {
		t.Errorf("zero configured speed must yield bad_speed verdict, got %s", leg.Verdict)
	}
}

func TestAvailableHours(t *testing.T) {
	calc := testCalculator(24)

	tests := []struct {
		name     string
		dep, arr model.Event
		want     float64
	}{
		{
			name: "order gap heuristic",
			dep:  model.Event{OrderIndex: 0},
			arr:  model.Event{OrderIndex: 2},
			want: 48,
		},
		{
			name: "story hours take precedence",
			dep:  model.Event{OrderIndex: 0, StoryHours: hoursPtr(10)},
			arr:  model.Event{OrderIndex: 5, StoryHours: hoursPtr(15)},
			want: 5,
		},
		{
			name: "one-sided story hours fall back to order gap",
			dep:  model.Event{OrderIndex: 0, StoryHours: hoursPtr(10)},
			arr:  model.Event{OrderIndex: 1},
			want: 24,
		},
		{
			name: "backwards clock clamps to zero",
			dep:  model.Event{OrderIndex: 0, StoryHours: hoursPtr(20)},
			arr:  model.Event{OrderIndex: 1, StoryHours: hoursPtr(10)},
			want: 0,
		},
	}
	for _, tt := range tests {
		if got := calc.AvailableHours(&tt.dep, &tt.arr); got != tt.want {
			t.Errorf("%s: AvailableHours = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDefaultTravelMode(t *testing.T) {
	calc := testCalculator(24)

	dep := &model.Event{ID: "e1", OrderIndex: 0, LocationID: "city-a"}
	arr := &model.Event{ID: "e2", OrderIndex: 1, LocationID: "city-b"}

	leg := calc.ComputeLeg("Hero", dep, arr)
	if leg.Mode != model.DefaultTravelMode {
		t.Errorf("expected default mode %q, got %q", model.DefaultTravelMode, leg.Mode)
	}
	if leg.SpeedKmh != 5 {
		t.Errorf("expected default speed 5, got %v", leg.SpeedKmh)
	}
}
