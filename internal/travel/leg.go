package travel

import "github.com/roddenjw/plotline/internal/model"

// Calculator computes travel legs for one manuscript against an immutable
// distance graph and speed profile.
type Calculator struct {
	Graph   *DistanceGraph
	Profile *model.TravelSpeedProfile
	// DefaultMode is assumed for events that specify no travel mode.
	DefaultMode string
}

// AvailableHours derives the in-world time between two events. Explicit
// story hours on both ends win; otherwise the narrative-order gap is scaled
// by the manuscript's hours-per-step convention. Never negative.
func (c *Calculator) AvailableHours(departure, arrival *model.Event) float64 {
	if departure.StoryHours != nil && arrival.StoryHours != nil {
		gap := *arrival.StoryHours - *departure.StoryHours
		if gap < 0 {
			return 0
		}
		return gap
	}
	steps := arrival.OrderIndex - departure.OrderIndex
	if steps < 0 {
		return 0
	}
	return float64(steps) * c.Profile.HoursPerStep
}

// ComputeLeg evaluates one character's movement between the locations of two
// events. The verdict is never an error: an unstored distance yields
// VerdictUnknown and a non-positive configured speed yields VerdictBadSpeed,
// both surfaced downstream as inconsistencies.
func (c *Calculator) ComputeLeg(character string, departure, arrival *model.Event) model.TravelLeg {
	mode := arrival.TravelMode
	if mode == "" {
		mode = c.DefaultMode
	}
	if mode == "" {
		mode = model.DefaultTravelMode
	}

	leg := model.TravelLeg{
		ManuscriptID:   departure.ManuscriptID,
		Character:      character,
		FromLocation:   departure.LocationID,
		ToLocation:     arrival.LocationID,
		DepartureEvent: departure.ID,
		ArrivalEvent:   arrival.ID,
		Mode:           mode,
		AvailableHours: c.AvailableHours(departure, arrival),
	}

	km, ok := c.Graph.Lookup(departure.LocationID, arrival.LocationID)
	if !ok {
		leg.Verdict = model.VerdictUnknown
		return leg
	}
	leg.DistanceKm = km

	speed := ResolveSpeed(c.Profile, mode)
	leg.SpeedKmh = speed
	if speed <= 0 {
		leg.Verdict = model.VerdictBadSpeed
		return leg
	}

	leg.RequiredHours = km / speed
	// Equality counts as feasible: exact-fit travel is allowed.
	if leg.RequiredHours <= leg.AvailableHours {
		leg.Verdict = model.VerdictFeasible
	} else {
		leg.Verdict = model.VerdictInfeasible
	}
	return leg
}
