package validator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/roddenjw/plotline/internal/model"
)

// Fingerprint derives a stable identity for an inconsistency: manuscript,
// kind, sorted participating event ids, and a content hash of the fields
// validators actually read from those events. Re-detection of the identical
// fact pattern produces the identical fingerprint; any edit to a
// participating event produces a new one, which is what lets a dismissal
// stay sticky without suppressing genuinely changed conflicts.
func Fingerprint(snap *Snapshot, inc *model.Inconsistency) string {
	ids := append([]string(nil), inc.EventIDs...)
	sort.Strings(ids)

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", snap.ManuscriptID, inc.Kind, inc.Character, strings.Join(ids, ","))
	for _, id := range ids {
		if ev := snap.EventByID(id); ev != nil {
			fmt.Fprintf(h, "|%s", eventContent(ev))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// eventContent serializes the validator-visible fields of an event.
func eventContent(ev *model.Event) string {
	chars := append([]string(nil), ev.Characters...)
	sort.Strings(chars)
	prereqs := append([]string(nil), ev.Prerequisites...)
	sort.Strings(prereqs)

	hours := "-"
	if ev.StoryHours != nil {
		hours = fmt.Sprintf("%g", *ev.StoryHours)
	}
	return fmt.Sprintf("%s;%d;%s;%s;%s;%s;%s",
		ev.ID, ev.OrderIndex, hours, ev.LocationID,
		strings.Join(chars, ","), strings.Join(prereqs, ","), ev.TravelMode)
}
