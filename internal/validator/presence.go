package validator

import (
	"fmt"

	"github.com/roddenjw/plotline/internal/model"
)

// presenceCheck flags a character placed at two different locations with no
// narrative time between the events: either both carry the same in-world
// clock position, or they are adjacent in narrative order with zero
// available travel time. Clock positions are compared across every pair of a
// character's located events, not just consecutive ones - a flashback can
// revisit a moment from many scenes earlier.
type presenceCheck struct{}

func (presenceCheck) Name() string { return "presence" }

func (presenceCheck) Check(snap *Snapshot) []model.Inconsistency {
	calc := snap.Calculator()
	names, byChar := snap.CharacterEvents()

	var findings []model.Inconsistency
	for _, character := range names {
		var located []*model.Event
		for _, ev := range byChar[character] {
			if ev.LocationID != "" {
				located = append(located, ev)
			}
		}
		for i := 0; i < len(located); i++ {
			for j := i + 1; j < len(located); j++ {
				a, b := located[i], located[j]
				if a.LocationID == b.LocationID || !samePosition(calc.AvailableHours(a, b), a, b) {
					continue
				}
				findings = append(findings, model.Inconsistency{
					Kind:     model.PresenceConflict,
					Severity: severityFor(model.PresenceConflict, a, b),
					Description: fmt.Sprintf("%s is at %s and %s at the same narrative moment (events %q and %q)",
						character, a.LocationID, b.LocationID, a.ID, b.ID),
					Suggestion:    "separate the events in time, or move one of them to the same location",
					TeachingPoint: "A character in two places at once is the contradiction readers catch fastest; it usually means a scene was reordered without its clock.",
					EventIDs:      []string{a.ID, b.ID},
					Character:     character,
				})
			}
		}
	}
	return findings
}

func samePosition(available float64, a, b *model.Event) bool {
	if a.StoryHours != nil && b.StoryHours != nil {
		return *a.StoryHours == *b.StoryHours
	}
	return b.OrderIndex-a.OrderIndex == 1 && available == 0
}
