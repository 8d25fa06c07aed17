package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roddenjw/plotline/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := filepath.Join(os.TempDir(), "plotline-store-test-"+t.Name())
	os.RemoveAll(dir)
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := New(dir)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func hoursPtr(h float64) *float64 { return &h }

func TestEventsRoundTrip(t *testing.T) {
	s := testStore(t)

	events := []model.Event{
		{
			ID: "e1", ManuscriptID: "ms1", Description: "Hero leaves the capital",
			Kind: model.EventScene, OrderIndex: 0, LocationID: "city-a",
			Characters: []string{"Hero", "Mentor"}, Importance: 7,
			NarrativeTime: "dawn", StoryHours: hoursPtr(6),
			Extra: map[string]string{"pov": "Hero"},
		},
		{
			ID: "e2", ManuscriptID: "ms1", Description: "Arrival at the border fort",
			Kind: model.EventScene, OrderIndex: 1, LocationID: "city-b",
			Characters: []string{"Hero"}, TravelMode: "horse",
			Prerequisites: []string{"e1"},
		},
	}

	if err := s.WriteEvents("ms1", events); err != nil {
		t.Fatalf("writing events: %v", err)
	}

	got, err := s.ListEvents("ms1")
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].ID != "e1" || got[1].ID != "e2" {
		t.Errorf("events not in narrative order: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].StoryHours == nil || *got[0].StoryHours != 6 {
		t.Errorf("story hours not preserved: %v", got[0].StoryHours)
	}
	if got[1].StoryHours != nil {
		t.Errorf("absent story hours must stay nil, got %v", *got[1].StoryHours)
	}
	if len(got[0].Characters) != 2 {
		t.Errorf("expected 2 characters, got %v", got[0].Characters)
	}
	if got[0].Extra["pov"] != "Hero" {
		t.Errorf("extra side channel not preserved: %v", got[0].Extra)
	}
	if len(got[1].Prerequisites) != 1 || got[1].Prerequisites[0] != "e1" {
		t.Errorf("prerequisites not preserved: %v", got[1].Prerequisites)
	}

	ev, err := s.GetEvent("e2")
	if err != nil {
		t.Fatalf("getting event: %v", err)
	}
	if ev.TravelMode != "horse" {
		t.Errorf("expected travel mode horse, got %q", ev.TravelMode)
	}

	// Re-import replaces, never appends
	if err := s.WriteEvents("ms1", events[:1]); err != nil {
		t.Fatalf("rewriting events: %v", err)
	}
	if n := s.EventCount("ms1"); n != 1 {
		t.Errorf("expected 1 event after rewrite, got %d", n)
	}
}

func TestDistanceSymmetryAndUpsert(t *testing.T) {
	s := testStore(t)

	if err := s.SetDistance("ms1", "city-b", "city-a", 100, map[string]string{"terrain": "mountain"}); err != nil {
		t.Fatalf("setting distance: %v", err)
	}

	for _, pair := range [][2]string{{"city-a", "city-b"}, {"city-b", "city-a"}} {
		km, ok, err := s.GetDistance("ms1", pair[0], pair[1])
		if err != nil {
			t.Fatalf("getting distance: %v", err)
		}
		if !ok || km != 100 {
			t.Errorf("GetDistance(%q, %q) = (%v, %v), want (100, true)", pair[0], pair[1], km, ok)
		}
	}

	// Second set for the same pair overwrites, either argument order
	if err := s.SetDistance("ms1", "city-a", "city-b", 120, nil); err != nil {
		t.Fatalf("overwriting distance: %v", err)
	}
	km, ok, _ := s.GetDistance("ms1", "city-b", "city-a")
	if !ok || km != 120 {
		t.Errorf("expected overwritten distance 120, got (%v, %v)", km, ok)
	}
	if n := s.DistanceCount("ms1"); n != 1 {
		t.Errorf("upsert must not duplicate facts, count = %d", n)
	}

	if err := s.SetDistance("ms1", "a", "b", -5, nil); err == nil {
		t.Error("negative distance must be rejected")
	}

	// Unknown stays distinct from zero
	if _, ok, _ := s.GetDistance("ms1", "city-a", "nowhere"); ok {
		t.Error("unknown pair must report ok=false")
	}
	if err := s.SetDistance("ms1", "inn", "stable", 0, nil); err != nil {
		t.Fatalf("zero distance is valid: %v", err)
	}
	km, ok, _ = s.GetDistance("ms1", "stable", "inn")
	if !ok || km != 0 {
		t.Errorf("expected stored zero distance, got (%v, %v)", km, ok)
	}
}

func TestSpeedProfileLazyCreation(t *testing.T) {
	s := testStore(t)

	p, err := s.GetOrCreateSpeedProfile("ms1", 5, 24)
	if err != nil {
		t.Fatalf("creating profile: %v", err)
	}
	if p.DefaultSpeed != 5 || p.HoursPerStep != 24 {
		t.Errorf("unexpected defaults: %+v", p)
	}

	p.Speeds["dragon"] = 120
	if err := s.UpdateSpeeds(p); err != nil {
		t.Fatalf("updating speeds: %v", err)
	}

	// Second access returns the stored profile, defaults ignored
	got, err := s.GetOrCreateSpeedProfile("ms1", 99, 99)
	if err != nil {
		t.Fatalf("reloading profile: %v", err)
	}
	if got.DefaultSpeed != 5 {
		t.Errorf("existing profile must win over defaults, got %v", got.DefaultSpeed)
	}
	if got.Speeds["dragon"] != 120 {
		t.Errorf("mode speed not preserved: %v", got.Speeds)
	}
}

func testInconsistency(fp string) model.Inconsistency {
	return model.Inconsistency{
		ManuscriptID: "ms1",
		Kind:         model.TravelInfeasible,
		Severity:     model.SeverityMedium,
		Description:  "Hero outruns the clock",
		EventIDs:     []string{"e1", "e2"},
		Character:    "Hero",
		Fingerprint:  fp,
	}
}

func TestInconsistencyUpsertDeduplicates(t *testing.T) {
	s := testStore(t)

	first, err := s.UpsertInconsistency(testInconsistency("fp1"))
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.ID == "" || first.Status != model.StatusOpen {
		t.Fatalf("expected open record with id, got %+v", first)
	}

	redetected := testInconsistency("fp1")
	redetected.Severity = model.SeverityHigh
	second, err := s.UpsertInconsistency(redetected)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("re-detection must reuse the record, got ids %s and %s", first.ID, second.ID)
	}
	if second.Severity != model.SeverityHigh {
		t.Errorf("re-detection must refresh severity, got %s", second.Severity)
	}

	incs, err := s.ListInconsistencies("ms1", "")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(incs) != 1 {
		t.Errorf("expected 1 record after re-detection, got %d", len(incs))
	}
}

func TestResolveIdempotent(t *testing.T) {
	s := testStore(t)

	inc, err := s.UpsertInconsistency(testInconsistency("fp1"))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	resolved, err := s.ResolveInconsistency(inc.ID, "fixed the gap")
	if err != nil {
		t.Fatalf("resolving: %v", err)
	}
	if resolved.Status != model.StatusResolved || resolved.ResolvedAt == "" {
		t.Fatalf("expected resolved with timestamp, got %+v", resolved)
	}

	// Resolving again is a no-op, and a later dismiss cannot undo it
	again, err := s.ResolveInconsistency(inc.ID, "other notes")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if again.ResolutionNotes != "fixed the gap" {
		t.Errorf("second resolve must not overwrite notes, got %q", again.ResolutionNotes)
	}
	after, err := s.DismissInconsistency(inc.ID, "")
	if err != nil {
		t.Fatalf("dismiss after resolve: %v", err)
	}
	if after.Status != model.StatusResolved {
		t.Errorf("terminal state must stick, got %s", after.Status)
	}
}

func TestDismissalSticky(t *testing.T) {
	s := testStore(t)

	inc, err := s.UpsertInconsistency(testInconsistency("fp1"))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := s.DismissInconsistency(inc.ID, "intentional teleport"); err != nil {
		t.Fatalf("dismissing: %v", err)
	}

	// Re-detecting the identical fact pattern must not reopen it
	re, err := s.UpsertInconsistency(testInconsistency("fp1"))
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if re.Status != model.StatusDismissed {
		t.Errorf("dismissal must survive re-detection, got %s", re.Status)
	}

	// A changed fingerprint means the underlying data changed: new record
	fresh, err := s.UpsertInconsistency(testInconsistency("fp2"))
	if err != nil {
		t.Fatalf("fresh upsert: %v", err)
	}
	if fresh.Status != model.StatusOpen || fresh.ID == re.ID {
		t.Errorf("changed data must open a new record, got %+v", fresh)
	}
}

func TestCloseStaleOpen(t *testing.T) {
	s := testStore(t)

	a, _ := s.UpsertInconsistency(testInconsistency("fp1"))
	b, _ := s.UpsertInconsistency(testInconsistency("fp2"))

	if err := s.CloseStaleOpen("ms1", map[string]bool{"fp1": true}); err != nil {
		t.Fatalf("closing stale: %v", err)
	}

	gotA, _ := s.GetInconsistency(a.ID)
	if gotA.Status != model.StatusOpen {
		t.Errorf("re-detected issue must stay open, got %s", gotA.Status)
	}
	gotB, _ := s.GetInconsistency(b.ID)
	if gotB.Status != model.StatusResolved {
		t.Errorf("undetected issue must auto-resolve, got %s", gotB.Status)
	}
}

func TestDeleteManuscript(t *testing.T) {
	s := testStore(t)

	if err := s.WriteEvents("ms1", []model.Event{{ID: "e1", ManuscriptID: "ms1", Description: "d", Kind: model.EventScene}}); err != nil {
		t.Fatalf("writing events: %v", err)
	}
	if err := s.SetDistance("ms1", "a", "b", 10, nil); err != nil {
		t.Fatalf("setting distance: %v", err)
	}
	if _, err := s.UpsertInconsistency(testInconsistency("fp1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := s.DeleteManuscript("ms1"); err != nil {
		t.Fatalf("deleting manuscript: %v", err)
	}

	if n := s.EventCount("ms1"); n != 0 {
		t.Errorf("expected 0 events, got %d", n)
	}
	if n := s.DistanceCount("ms1"); n != 0 {
		t.Errorf("expected 0 distances, got %d", n)
	}
	incs, _ := s.ListInconsistencies("ms1", "")
	if len(incs) != 0 {
		t.Errorf("expected 0 inconsistencies, got %d", len(incs))
	}
}

func TestMetaRoundTrip(t *testing.T) {
	s := testStore(t)

	if got := s.GetMeta("missing"); got != "" {
		t.Errorf("unset key must read empty, got %q", got)
	}
	if err := s.SetMeta("last_validated:ms1", "2026-08-29T10:00:00Z"); err != nil {
		t.Fatalf("setting meta: %v", err)
	}
	if err := s.SetMeta("last_validated:ms1", "2026-08-29T11:00:00Z"); err != nil {
		t.Fatalf("overwriting meta: %v", err)
	}
	if got := s.GetMeta("last_validated:ms1"); got != "2026-08-29T11:00:00Z" {
		t.Errorf("expected latest value, got %q", got)
	}
}

func TestStatusCountsAndManuscripts(t *testing.T) {
	s := testStore(t)

	s.WriteEvents("ms1", []model.Event{{ID: "e1", ManuscriptID: "ms1", Description: "d", Kind: model.EventScene}})
	a, _ := s.UpsertInconsistency(testInconsistency("fp1"))
	s.UpsertInconsistency(testInconsistency("fp2"))
	s.DismissInconsistency(a.ID, "")

	counts := s.StatusCounts("ms1")
	if counts[model.StatusOpen] != 1 || counts[model.StatusDismissed] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}

	manuscripts := s.Manuscripts()
	if len(manuscripts) != 1 || manuscripts[0] != "ms1" {
		t.Errorf("expected [ms1], got %v", manuscripts)
	}
}
