package validator

import (
	"fmt"

	"github.com/roddenjw/plotline/internal/model"
)

// prerequisiteCheck verifies every prerequisite reference points at an event
// with a strictly smaller order index. A forward or self reference is a
// violation; a reference to an event that doesn't exist is a dangling
// reference, reported rather than crashed on.
type prerequisiteCheck struct{}

func (prerequisiteCheck) Name() string { return "prerequisite" }

func (prerequisiteCheck) Check(snap *Snapshot) []model.Inconsistency {
	var findings []model.Inconsistency
	for i := range snap.Events {
		ev := &snap.Events[i]
		for _, ref := range ev.Prerequisites {
			if ref == ev.ID {
				findings = append(findings, model.Inconsistency{
					Kind:        model.PrerequisiteViolation,
					Severity:    severityFor(model.PrerequisiteViolation, ev),
					Description: fmt.Sprintf("event %q lists itself as a prerequisite", ev.ID),
					Suggestion:  "remove the self reference",
					EventIDs:    []string{ev.ID},
				})
				continue
			}

			target := snap.EventByID(ref)
			if target == nil {
				findings = append(findings, model.Inconsistency{
					Kind:        model.DanglingReference,
					Severity:    severityFor(model.DanglingReference, ev),
					Description: fmt.Sprintf("event %q requires %q, which does not exist in this manuscript", ev.ID, ref),
					Suggestion:  "remove the stale prerequisite or restore the missing event",
					EventIDs:    []string{ev.ID},
				})
				continue
			}

			if target.OrderIndex >= ev.OrderIndex {
				findings = append(findings, model.Inconsistency{
					Kind:     model.PrerequisiteViolation,
					Severity: severityFor(model.PrerequisiteViolation, ev, target),
					Description: fmt.Sprintf("event %q (order %d) requires %q (order %d), which happens later in the narrative",
						ev.ID, ev.OrderIndex, target.ID, target.OrderIndex),
					Suggestion:    "reorder the events, or drop the prerequisite if the dependency no longer holds",
					TeachingPoint: "Setups have to land before payoffs; a payoff that references a scene the reader hasn't met reads as a continuity hole, not foreshadowing.",
					EventIDs:      []string{ev.ID, target.ID},
				})
			}
		}
	}
	return findings
}
