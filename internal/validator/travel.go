package validator

import (
	"fmt"

	"github.com/roddenjw/plotline/internal/model"
)

// Legs computes every travel leg implied by the snapshot: for each
// character, each consecutive pair of located events where the location
// changes. Shared by the travel check and the overview projection.
func Legs(snap *Snapshot) []model.TravelLeg {
	calc := snap.Calculator()
	names, byChar := snap.CharacterEvents()

	var legs []model.TravelLeg
	for _, character := range names {
		var prev *model.Event
		for _, ev := range byChar[character] {
			if ev.LocationID == "" {
				continue // cannot participate in travel checks
			}
			if prev != nil && prev.LocationID != ev.LocationID {
				legs = append(legs, calc.ComputeLeg(character, prev, ev))
			}
			prev = ev
		}
	}
	return legs
}

// travelCheck flags travel a character could not physically complete in the
// narrative time available, plus the data gaps that prevent proving
// feasibility either way. Closed world: no distance fact means no proof,
// and absence of proof is reported, not accepted.
type travelCheck struct{}

func (travelCheck) Name() string { return "travel" }

func (travelCheck) Check(snap *Snapshot) []model.Inconsistency {
	var findings []model.Inconsistency
	for _, leg := range Legs(snap) {
		dep := snap.EventByID(leg.DepartureEvent)
		arr := snap.EventByID(leg.ArrivalEvent)

		switch leg.Verdict {
		case model.VerdictInfeasible:
			findings = append(findings, model.Inconsistency{
				Kind:     model.TravelInfeasible,
				Severity: severityFor(model.TravelInfeasible, dep, arr),
				Description: fmt.Sprintf("%s travels %s to %s (%.0f km) needing %.1f h at %.1f km/h (%s), but only %.1f h pass in the narrative",
					leg.Character, leg.FromLocation, leg.ToLocation, leg.DistanceKm,
					leg.RequiredHours, leg.SpeedKmh, leg.Mode, leg.AvailableHours),
				Suggestion: fmt.Sprintf("add narrative time between the events, shorten the distance, or give %s a faster travel mode",
					leg.Character),
				TeachingPoint: "Readers track journey times instinctively; travel that outruns its own clock breaks immersion even when no one can name why.",
				EventIDs:      []string{leg.DepartureEvent, leg.ArrivalEvent},
				Character:     leg.Character,
			})
		case model.VerdictUnknown:
			findings = append(findings, model.Inconsistency{
				Kind:     model.UnknownDistance,
				Severity: severityFor(model.UnknownDistance, dep, arr),
				Description: fmt.Sprintf("%s moves from %s to %s but no distance is recorded for that pair, so travel time cannot be checked",
					leg.Character, leg.FromLocation, leg.ToLocation),
				Suggestion:    fmt.Sprintf("record the distance between %s and %s in the world settings", leg.FromLocation, leg.ToLocation),
				TeachingPoint: "An unmapped route is a promise the world hasn't kept yet; pinning distances early keeps later chapters honest.",
				EventIDs:      []string{leg.DepartureEvent, leg.ArrivalEvent},
				Character:     leg.Character,
			})
		case model.VerdictBadSpeed:
			findings = append(findings, model.Inconsistency{
				Kind:     model.SpeedConfig,
				Severity: severityFor(model.SpeedConfig, dep, arr),
				Description: fmt.Sprintf("travel mode %q resolves to %.1f km/h; speeds must be positive for feasibility checks",
					leg.Mode, leg.SpeedKmh),
				Suggestion: fmt.Sprintf("set a positive speed for mode %q in the manuscript's speed profile", leg.Mode),
				EventIDs:   []string{leg.DepartureEvent, leg.ArrivalEvent},
				Character:  leg.Character,
			})
		}
	}
	return findings
}
