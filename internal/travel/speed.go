package travel

import "github.com/roddenjw/plotline/internal/model"

// ResolveSpeed returns the effective km/h for a travel mode. Mode names are
// exact-match, case-sensitive, opaque strings; an unrecognized or empty mode
// falls back to the profile's default speed. An author who writes "Dragon"
// and configures "dragon" gets the default - predictability over cleverness.
func ResolveSpeed(p *model.TravelSpeedProfile, mode string) float64 {
	if p == nil {
		return model.DefaultSpeedKmh
	}
	if speed, ok := p.Speeds[mode]; ok {
		return speed
	}
	return p.DefaultSpeed
}
