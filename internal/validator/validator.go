// Package validator runs consistency checks over an immutable snapshot of a
// manuscript's timeline. Checks are pure functions: they read the snapshot
// and produce Inconsistency values, never touching storage.
package validator

import (
	"context"
	"fmt"
	"sort"

	"github.com/roddenjw/plotline/internal/model"
	"github.com/roddenjw/plotline/internal/travel"
)

// Snapshot is the read-only input to a validation run: one manuscript's
// events in narrative order plus its world physics.
type Snapshot struct {
	ManuscriptID string
	Events       []model.Event
	Graph        *travel.DistanceGraph
	Profile      *model.TravelSpeedProfile
	DefaultMode  string
}

// Calculator builds a travel-leg calculator over the snapshot.
func (s *Snapshot) Calculator() *travel.Calculator {
	return &travel.Calculator{Graph: s.Graph, Profile: s.Profile, DefaultMode: s.DefaultMode}
}

// EventByID returns the event with the given id, nil when absent.
func (s *Snapshot) EventByID(id string) *model.Event {
	for i := range s.Events {
		if s.Events[i].ID == id {
			return &s.Events[i]
		}
	}
	return nil
}

// CharacterEvents groups the snapshot's events per character, preserving
// narrative order. Character names are returned sorted so runs are
// deterministic.
func (s *Snapshot) CharacterEvents() ([]string, map[string][]*model.Event) {
	byChar := make(map[string][]*model.Event)
	for i := range s.Events {
		ev := &s.Events[i]
		for _, c := range ev.Characters {
			byChar[c] = append(byChar[c], ev)
		}
	}
	names := make([]string, 0, len(byChar))
	for c := range byChar {
		names = append(names, c)
	}
	sort.Strings(names)
	return names, byChar
}

// Validator is a single independent check. Checks must be total: they
// terminate and never fail for malformed-but-structurally-valid input. An
// event missing the data a check needs is skipped by that check only.
type Validator interface {
	Name() string
	Check(snap *Snapshot) []model.Inconsistency
}

// Pipeline returns the fixed, ordered list of checks. New checks slot in
// here without touching existing ones.
func Pipeline() []Validator {
	return []Validator{
		structureCheck{},
		travelCheck{},
		presenceCheck{},
		prerequisiteCheck{},
	}
}

// Run executes every validator over the snapshot and returns the union of
// findings, fingerprinted. The run is cancellable between validators. A
// panicking validator is reported as an INTERNAL_ERROR finding and the
// remaining validators still run; one bad check never aborts the pipeline.
func Run(ctx context.Context, snap *Snapshot, validators []Validator) ([]model.Inconsistency, error) {
	var findings []model.Inconsistency
	for _, v := range validators {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}
		findings = append(findings, runOne(v, snap)...)
	}

	for i := range findings {
		sort.Strings(findings[i].EventIDs)
		findings[i].ManuscriptID = snap.ManuscriptID
		if findings[i].Fingerprint == "" {
			findings[i].Fingerprint = Fingerprint(snap, &findings[i])
		}
	}
	return findings, nil
}

func runOne(v Validator, snap *Snapshot) (findings []model.Inconsistency) {
	defer func() {
		if r := recover(); r != nil {
			findings = append(findings, model.Inconsistency{
				Kind:        model.InternalError,
				Severity:    model.SeverityHigh,
				Description: fmt.Sprintf("validator %q failed: %v", v.Name(), r),
				EventIDs:    []string{},
			})
		}
	}()
	return v.Check(snap)
}

// structureCheck guards invariants the event source is supposed to uphold.
// A duplicate order_index breaks all before/after reasoning, so it is
// reported as a hard internal error rather than silently tolerated.
type structureCheck struct{}

func (structureCheck) Name() string { return "structure" }

func (structureCheck) Check(snap *Snapshot) []model.Inconsistency {
	seen := make(map[int]*model.Event, len(snap.Events))
	var findings []model.Inconsistency
	for i := range snap.Events {
		ev := &snap.Events[i]
		if prev, ok := seen[ev.OrderIndex]; ok {
			findings = append(findings, model.Inconsistency{
				Kind:     model.InternalError,
				Severity: model.SeverityHigh,
				Description: fmt.Sprintf("events %q and %q share order index %d; narrative order must be total",
					prev.ID, ev.ID, ev.OrderIndex),
				EventIDs: []string{prev.ID, ev.ID},
			})
			continue
		}
		seen[ev.OrderIndex] = ev
	}
	return findings
}

func severityFor(kind model.InconsistencyKind, events ...*model.Event) model.Severity {
	maxImportance := 0
	for _, ev := range events {
		if ev != nil && ev.Importance > maxImportance {
			maxImportance = ev.Importance
		}
	}
	switch kind {
	case model.PresenceConflict, model.PrerequisiteViolation, model.InternalError:
		return model.SeverityHigh
	case model.TravelInfeasible:
		if maxImportance >= 5 {
			return model.SeverityHigh
		}
		return model.SeverityMedium
	case model.UnknownDistance:
		return model.SeverityLow
	default:
		return model.SeverityMedium
	}
}
