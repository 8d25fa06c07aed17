// Package report turns raw inconsistency lists into the ordered, summarized
// views the CLI and overview surfaces print. Pure computation; no storage.
package report

import (
	"sort"

	"github.com/roddenjw/plotline/internal/model"
)

// Summary is the rollup of a manuscript's inconsistencies.
type Summary struct {
	Total      int
	Open       int
	Resolved   int
	Dismissed  int
	ByKind     map[model.InconsistencyKind]int
	BySeverity map[model.Severity]int
	// Characters lists everyone named by at least one open issue, most
	// affected first.
	Characters []CharacterIssues
}

// CharacterIssues counts a single character's open issues.
type CharacterIssues struct {
	Name string
	Open int
}

// Summarize rolls a list of inconsistencies up into a Summary.
func Summarize(incs []model.Inconsistency) *Summary {
	s := &Summary{
		Total:      len(incs),
		ByKind:     make(map[model.InconsistencyKind]int),
		BySeverity: make(map[model.Severity]int),
	}

	openByChar := make(map[string]int)
	for _, inc := range incs {
		s.ByKind[inc.Kind]++
		s.BySeverity[inc.Severity]++
		switch inc.Status {
		case model.StatusOpen:
			s.Open++
			if inc.Character != "" {
				openByChar[inc.Character]++
			}
		case model.StatusResolved:
			s.Resolved++
		case model.StatusDismissed:
			s.Dismissed++
		}
	}

	for name, n := range openByChar {
		s.Characters = append(s.Characters, CharacterIssues{Name: name, Open: n})
	}
	sort.Slice(s.Characters, func(i, j int) bool {
		if s.Characters[i].Open != s.Characters[j].Open {
			return s.Characters[i].Open > s.Characters[j].Open
		}
		return s.Characters[i].Name < s.Characters[j].Name
	})
	return s
}

// Sort orders inconsistencies for display: open before terminal, then by
// severity (high first), then kind, then id for a stable tie-break.
func Sort(incs []model.Inconsistency) {
	sort.SliceStable(incs, func(i, j int) bool {
		a, b := &incs[i], &incs[j]
		if a.Status != b.Status {
			return statusRank(a.Status) < statusRank(b.Status)
		}
		if a.Severity != b.Severity {
			return severityRank(a.Severity) < severityRank(b.Severity)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID < b.ID
	})
}

func statusRank(s model.Status) int {
	switch s {
	case model.StatusOpen:
		return 0
	case model.StatusDismissed:
		return 1
	default:
		return 2
	}
}

func severityRank(s model.Severity) int {
	switch s {
	case model.SeverityHigh:
		return 0
	case model.SeverityMedium:
		return 1
	default:
		return 2
	}
}
