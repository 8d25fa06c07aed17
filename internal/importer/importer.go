// Package importer reads manuscript exports produced by the authoring layer
// and loads them into the store. Two formats: the JSON export, and the HTML
// outline some authoring tools emit. No prose is interpreted - events arrive
// already structured; entity extraction is the authoring layer's job.
package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/roddenjw/plotline/internal/model"
)

// Export is a full manuscript payload: events plus world physics.
type Export struct {
	ManuscriptID string                    `json:"manuscript_id"`
	Events       []model.Event             `json:"events"`
	Distances    []model.LocationDistance  `json:"distances,omitempty"`
	Speeds       *model.TravelSpeedProfile `json:"speeds,omitempty"`
}

// Store is the write surface the importer needs.
type Store interface {
	WriteEvents(manuscriptID string, events []model.Event) error
	SetDistance(manuscriptID, a, b string, km float64, metadata map[string]string) error
	UpdateSpeeds(p *model.TravelSpeedProfile) error
}

// ReadFile parses an export file, choosing the format by extension
// (.json, .html/.htm).
func ReadFile(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var exp Export
		if err := json.NewDecoder(f).Decode(&exp); err != nil {
			return nil, fmt.Errorf("parsing JSON export: %w", err)
		}
		return &exp, nil
	case ".html", ".htm":
		doc, err := goquery.NewDocumentFromReader(f)
		if err != nil {
			return nil, fmt.Errorf("parsing HTML outline: %w", err)
		}
		return ParseOutline(doc)
	default:
		return nil, fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

// ParseOutline extracts a manuscript from an HTML outline document. Each
// scene is a section.scene-entry carrying data attributes; the description
// is the section's first paragraph.
func ParseOutline(doc *goquery.Document) (*Export, error) {
	exp := &Export{}

	root := doc.Find(".manuscript").First()
	exp.ManuscriptID, _ = root.Attr("data-manuscript-id")

	order := 0
	root.Find("section.scene-entry").Each(func(_ int, entry *goquery.Selection) {
		ev := model.Event{
			ManuscriptID: exp.ManuscriptID,
			Kind:         model.EventScene,
			OrderIndex:   order,
		}

		ev.ID, _ = entry.Attr("data-event-id")
		if kind, exists := entry.Attr("data-kind"); exists {
			ev.Kind = model.EventKind(kind)
		}
		if ord, exists := entry.Attr("data-order"); exists {
			fmt.Sscanf(ord, "%d", &ev.OrderIndex)
		}
		if imp, exists := entry.Attr("data-importance"); exists {
			fmt.Sscanf(imp, "%d", &ev.Importance)
		}
		if hours, exists := entry.Attr("data-story-hours"); exists {
			if h, err := strconv.ParseFloat(hours, 64); err == nil {
				ev.StoryHours = &h
			}
		}
		ev.LocationID, _ = entry.Attr("data-location")
		ev.TravelMode, _ = entry.Attr("data-travel-mode")
		if chars, exists := entry.Attr("data-characters"); exists {
			ev.Characters = splitList(chars)
		}
		if prereqs, exists := entry.Attr("data-prereqs"); exists {
			ev.Prerequisites = splitList(prereqs)
		}

		ev.Description = strings.TrimSpace(entry.Find("p.description").First().Text())
		if ev.Description == "" {
			ev.Description = strings.TrimSpace(entry.Find("h2").First().Text())
		}
		ev.NarrativeTime = strings.TrimSpace(entry.Find("p.narrative-time").First().Text())

		if ev.ID != "" {
			exp.Events = append(exp.Events, ev)
			order = ev.OrderIndex + 1
		}
	})

	if exp.ManuscriptID == "" {
		return nil, fmt.Errorf("outline has no .manuscript element with a data-manuscript-id")
	}
	if len(exp.Events) == 0 {
		return nil, fmt.Errorf("outline contains no scene entries")
	}
	return exp, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Apply writes an export through the store: events replace the manuscript's
// previous set, distances upsert pair by pair, and the speed profile is
// replaced when present.
func Apply(s Store, exp *Export) error {
	if exp.ManuscriptID == "" {
		return fmt.Errorf("export has no manuscript id")
	}

	for i := range exp.Events {
		exp.Events[i].ManuscriptID = exp.ManuscriptID
	}
	if err := s.WriteEvents(exp.ManuscriptID, exp.Events); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}

	for _, d := range exp.Distances {
		if err := s.SetDistance(exp.ManuscriptID, d.LocA, d.LocB, d.Km, d.Metadata); err != nil {
			return fmt.Errorf("writing distance %s-%s: %w", d.LocA, d.LocB, err)
		}
	}

	if exp.Speeds != nil {
		p := *exp.Speeds
		p.ManuscriptID = exp.ManuscriptID
		if p.DefaultSpeed == 0 {
			p.DefaultSpeed = model.DefaultSpeedKmh
		}
		if p.HoursPerStep == 0 {
			p.HoursPerStep = model.DefaultHoursPerStep
		}
		if err := s.UpdateSpeeds(&p); err != nil {
			return fmt.Errorf("writing speed profile: %w", err)
		}
	}
	return nil
}
