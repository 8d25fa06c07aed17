package model

// EventKind classifies narrative events.
type EventKind string

const (
	EventScene     EventKind = "scene"
	EventChapter   EventKind = "chapter"
	EventFlashback EventKind = "flashback"
	EventDream     EventKind = "dream"
	EventOther     EventKind = "other"
)

// Event is a single point in a manuscript's narrative timeline. The engine
// only ever reads events; the authoring layer owns creation and editing.
type Event struct {
	ID           string    `json:"id"`
	ManuscriptID string    `json:"manuscript_id"`
	Description  string    `json:"description"`
	Kind         EventKind `json:"kind"`
	// OrderIndex is the author-facing narrative order, unique and total
	// within a manuscript. All before/after reasoning uses it, not
	// in-world time.
	OrderIndex int `json:"order_index"`
	// NarrativeTime is free-form author text ("dawn, three days later").
	// Never machine-parsed.
	NarrativeTime string `json:"narrative_time,omitempty"`
	// StoryHours is an optional in-world clock position in hours, supplied
	// by the authoring layer. When both ends of a travel leg carry it, it
	// overrides the order-index heuristic for available time.
	StoryHours *float64 `json:"story_hours,omitempty"`
	LocationID string   `json:"location_id,omitempty"`
	Characters []string `json:"characters,omitempty"`
	// Importance weights which conflicts matter most (higher = more central).
	Importance int `json:"importance"`
	// Prerequisites lists event ids that must precede this one in narrative
	// order. A forward or self reference is a reportable inconsistency.
	Prerequisites []string `json:"prerequisites,omitempty"`
	TravelMode    string   `json:"travel_mode,omitempty"`
	// Extra carries free-form authorial data the engine never inspects.
	Extra map[string]string `json:"extra,omitempty"`
}

// LocationDistance is a symmetric distance fact between two locations.
// LocA/LocB are stored in canonical (lexicographic) order so lookup never
// depends on argument order.
type LocationDistance struct {
	ManuscriptID string            `json:"manuscript_id"`
	LocA         string            `json:"loc_a"`
	LocB         string            `json:"loc_b"`
	Km           float64           `json:"km"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// TravelSpeedProfile holds a manuscript's world physics: per-mode speeds in
// km/h, the fallback speed, and how many in-world hours one order-index step
// represents when events carry no explicit story hours.
type TravelSpeedProfile struct {
	ManuscriptID string             `json:"manuscript_id"`
	Speeds       map[string]float64 `json:"speeds,omitempty"`
	DefaultSpeed float64            `json:"default_speed"`
	HoursPerStep float64            `json:"hours_per_step"`
}

// Default world physics for lazily created profiles: walking pace, one
// narrative day per order-index step.
const (
	DefaultSpeedKmh     = 5.0
	DefaultHoursPerStep = 24.0
	DefaultTravelMode   = "travel"
)

// Verdict is the outcome of a travel-leg feasibility calculation.
type Verdict string

const (
	VerdictFeasible   Verdict = "feasible"
	VerdictInfeasible Verdict = "infeasible"
	// VerdictUnknown means no distance fact exists for the pair. Surfaced
	// downstream as an UNKNOWN_DISTANCE inconsistency, never silently
	// treated as feasible.
	VerdictUnknown Verdict = "unknown"
	// VerdictBadSpeed means the resolved speed was zero or negative - a
	// configuration error, not a division fault.
	VerdictBadSpeed Verdict = "bad_speed"
)

// TravelLeg is one character's movement between two locations, bounded by
// two narrative events.
type TravelLeg struct {
	ManuscriptID   string  `json:"manuscript_id"`
	Character      string  `json:"character"`
	FromLocation   string  `json:"from_location"`
	ToLocation     string  `json:"to_location"`
	DepartureEvent string  `json:"departure_event"`
	ArrivalEvent   string  `json:"arrival_event"`
	Mode           string  `json:"mode"`
	DistanceKm     float64 `json:"distance_km"`
	SpeedKmh       float64 `json:"speed_kmh"`
	RequiredHours  float64 `json:"required_hours"`
	AvailableHours float64 `json:"available_hours"`
	Verdict        Verdict `json:"verdict"`
}

// InconsistencyKind tags the category of a detected problem.
type InconsistencyKind string

const (
	TravelInfeasible      InconsistencyKind = "TRAVEL_INFEASIBLE"
	PresenceConflict      InconsistencyKind = "PRESENCE_CONFLICT"
	PrerequisiteViolation InconsistencyKind = "PREREQUISITE_VIOLATION"
	UnknownDistance       InconsistencyKind = "UNKNOWN_DISTANCE"
	SpeedConfig           InconsistencyKind = "SPEED_CONFIG"
	DanglingReference     InconsistencyKind = "DANGLING_REFERENCE"
	InternalError         InconsistencyKind = "INTERNAL_ERROR"
)

// Severity ranks how much a conflict matters.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Status is the resolution state of an inconsistency record.
type Status string

const (
	StatusOpen      Status = "open"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

// Inconsistency is the engine's output unit. Fingerprint identifies "the
// same" issue across runs: kind + sorted participating event ids + a content
// hash of the fields validators read, so a dismissal stays sticky until the
// underlying events actually change.
type Inconsistency struct {
	ID              string            `json:"id"`
	ManuscriptID    string            `json:"manuscript_id"`
	Kind            InconsistencyKind `json:"kind"`
	Severity        Severity          `json:"severity"`
	Description     string            `json:"description"`
	Suggestion      string            `json:"suggestion,omitempty"`
	TeachingPoint   string            `json:"teaching_point,omitempty"`
	EventIDs        []string          `json:"event_ids"`
	Character       string            `json:"character,omitempty"`
	Fingerprint     string            `json:"fingerprint"`
	Status          Status            `json:"status"`
	ResolutionNotes string            `json:"resolution_notes,omitempty"`
	ResolvedAt      string            `json:"resolved_at,omitempty"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
}

// ValidationReport is what a full pipeline run returns.
type ValidationReport struct {
	ManuscriptID    string          `json:"manuscript_id"`
	EventCount      int             `json:"event_count"`
	Inconsistencies []Inconsistency `json:"inconsistencies"`
	OpenCount       int             `json:"open_count"`
	DismissedCount  int             `json:"dismissed_count"`
	ValidatedAt     string          `json:"validated_at"`
}

// Overview is the read-only composite view for dashboards.
type Overview struct {
	ManuscriptID    string              `json:"manuscript_id"`
	Events          []Event             `json:"events"`
	Inconsistencies []Inconsistency     `json:"inconsistencies"`
	TravelLegs      []TravelLeg         `json:"travel_legs"`
	Distances       []LocationDistance  `json:"distances"`
	SpeedProfile    *TravelSpeedProfile `json:"speed_profile"`
	Stats           OverviewStats       `json:"stats"`
}

// OverviewStats summarizes an Overview.
type OverviewStats struct {
	EventCount      int `json:"event_count"`
	CharacterCount  int `json:"character_count"`
	LocationCount   int `json:"location_count"`
	DistanceCount   int `json:"distance_count"`
	OpenIssues      int `json:"open_issues"`
	ResolvedIssues  int `json:"resolved_issues"`
	DismissedIssues int `json:"dismissed_issues"`
}
