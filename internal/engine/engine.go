// Package engine wires the validator pipeline to storage: it assembles the
// immutable snapshot, runs the checks, and reconciles findings against the
// inconsistency repository.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/roddenjw/plotline/internal/model"
	"github.com/roddenjw/plotline/internal/travel"
	"github.com/roddenjw/plotline/internal/validator"
)

// EventSource is the read-only view of a manuscript's events. Events arrive
// ordered by order index; the engine never mutates them.
type EventSource interface {
	ListEvents(manuscriptID string) ([]model.Event, error)
}

// DistanceStore supplies the stored distance facts.
type DistanceStore interface {
	ListDistances(manuscriptID string) ([]model.LocationDistance, error)
}

// SpeedStore supplies the manuscript's speed profile, creating it lazily.
type SpeedStore interface {
	GetOrCreateSpeedProfile(manuscriptID string, defaultSpeed, hoursPerStep float64) (*model.TravelSpeedProfile, error)
}

// IssueRepo is the inconsistency lifecycle store.
type IssueRepo interface {
	UpsertInconsistency(inc model.Inconsistency) (*model.Inconsistency, error)
	ListInconsistencies(manuscriptID string, status model.Status) ([]model.Inconsistency, error)
	CloseStaleOpen(manuscriptID string, detected map[string]bool) error
	ResolveInconsistency(id, notes string) (*model.Inconsistency, error)
	DismissInconsistency(id, notes string) (*model.Inconsistency, error)
}

// MetaStore records run bookkeeping, like when a manuscript was last
// validated.
type MetaStore interface {
	SetMeta(key, value string) error
	GetMeta(key string) string
}

// LastValidatedKey returns the meta key holding a manuscript's most recent
// validation timestamp.
func LastValidatedKey(manuscriptID string) string {
	return "last_validated:" + manuscriptID
}

// Engine is the orchestration entrypoint. Dependencies are injected by the
// caller; *store.Store satisfies all five interfaces.
type Engine struct {
	Events    EventSource
	Distances DistanceStore
	Speeds    SpeedStore
	Issues    IssueRepo
	Meta      MetaStore

	// Defaults for lazily created speed profiles.
	DefaultSpeed float64
	HoursPerStep float64
	// DefaultMode is assumed for events that specify no travel mode.
	DefaultMode string
}

// New builds an Engine with the built-in world-physics defaults.
func New(events EventSource, distances DistanceStore, speeds SpeedStore, issues IssueRepo, meta MetaStore) *Engine {
	return &Engine{
		Events:       events,
		Distances:    distances,
		Speeds:       speeds,
		Issues:       issues,
		Meta:         meta,
		DefaultSpeed: model.DefaultSpeedKmh,
		HoursPerStep: model.DefaultHoursPerStep,
		DefaultMode:  model.DefaultTravelMode,
	}
}

// Snapshot loads one manuscript's validation input. The returned snapshot is
// a private copy; nothing mutates it during the run.
func (e *Engine) Snapshot(manuscriptID string) (*validator.Snapshot, error) {
	events, err := e.Events.ListEvents(manuscriptID)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	distances, err := e.Distances.ListDistances(manuscriptID)
	if err != nil {
		return nil, fmt.Errorf("loading distances: %w", err)
	}
	profile, err := e.Speeds.GetOrCreateSpeedProfile(manuscriptID, e.DefaultSpeed, e.HoursPerStep)
	if err != nil {
		return nil, fmt.Errorf("loading speed profile: %w", err)
	}
	return &validator.Snapshot{
		ManuscriptID: manuscriptID,
		Events:       events,
		Graph:        travel.NewDistanceGraph(distances),
		Profile:      profile,
		DefaultMode:  e.DefaultMode,
	}, nil
}

// Validate runs the full pipeline for a manuscript, persists findings, and
// returns the consolidated report. Inconsistent data is never an error; only
// infrastructure failures propagate.
func (e *Engine) Validate(ctx context.Context, manuscriptID string) (*model.ValidationReport, error) {
	snap, err := e.Snapshot(manuscriptID)
	if err != nil {
		return nil, err
	}

	findings, err := validator.Run(ctx, snap, validator.Pipeline())
	if err != nil {
		return nil, err
	}

	detected := make(map[string]bool, len(findings))
	report := &model.ValidationReport{
		ManuscriptID: manuscriptID,
		EventCount:   len(snap.Events),
		ValidatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	for _, f := range findings {
		if detected[f.Fingerprint] {
			continue // two checks agreeing on one fact pattern collapse to one record
		}
		detected[f.Fingerprint] = true

		stored, err := e.Issues.UpsertInconsistency(f)
		if err != nil {
			return nil, fmt.Errorf("recording inconsistency: %w", err)
		}
		report.Inconsistencies = append(report.Inconsistencies, *stored)
		switch stored.Status {
		case model.StatusOpen:
			report.OpenCount++
		case model.StatusDismissed:
			report.DismissedCount++
		}
	}

	// Open issues the run no longer produces were fixed by editing; close
	// them instead of letting them flap.
	if err := e.Issues.CloseStaleOpen(manuscriptID, detected); err != nil {
		return nil, fmt.Errorf("closing stale issues: %w", err)
	}

	if err := e.Meta.SetMeta(LastValidatedKey(manuscriptID), report.ValidatedAt); err != nil {
		return nil, fmt.Errorf("recording validation time: %w", err)
	}

	return report, nil
}

// Resolve marks an inconsistency fixed. Idempotent.
func (e *Engine) Resolve(id, notes string) (*model.Inconsistency, error) {
	return e.Issues.ResolveInconsistency(id, notes)
}

// Dismiss marks an inconsistency a false positive. The dismissal survives
// re-detection until the underlying events change.
func (e *Engine) Dismiss(id, notes string) (*model.Inconsistency, error) {
	return e.Issues.DismissInconsistency(id, notes)
}

// Overview assembles the read-only composite view for dashboards. Purely a
// projection over existing data.
func (e *Engine) Overview(manuscriptID string) (*model.Overview, error) {
	snap, err := e.Snapshot(manuscriptID)
	if err != nil {
		return nil, err
	}
	distances, err := e.Distances.ListDistances(manuscriptID)
	if err != nil {
		return nil, err
	}
	issues, err := e.Issues.ListInconsistencies(manuscriptID, "")
	if err != nil {
		return nil, err
	}

	ov := &model.Overview{
		ManuscriptID:    manuscriptID,
		Events:          snap.Events,
		Inconsistencies: issues,
		TravelLegs:      validator.Legs(snap),
		Distances:       distances,
		SpeedProfile:    snap.Profile,
	}

	chars := make(map[string]bool)
	locs := make(map[string]bool)
	for _, ev := range snap.Events {
		for _, c := range ev.Characters {
			chars[c] = true
		}
		if ev.LocationID != "" {
			locs[ev.LocationID] = true
		}
	}
	ov.Stats = model.OverviewStats{
		EventCount:     len(snap.Events),
		CharacterCount: len(chars),
		LocationCount:  len(locs),
		DistanceCount:  len(distances),
	}
	for _, inc := range issues {
		switch inc.Status {
		case model.StatusOpen:
			ov.Stats.OpenIssues++
		case model.StatusResolved:
			ov.Stats.ResolvedIssues++
		case model.StatusDismissed:
			ov.Stats.DismissedIssues++
		}
	}
	return ov, nil
}
