package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/oklog/ulid/v2"
	"github.com/roddenjw/plotline/internal/model"
	"github.com/roddenjw/plotline/internal/travel"
)

// Store manages all data persistence via DuckDB.
type Store struct {
	DB      *sql.DB
	DataDir string

	// mu funnels inconsistency writes through a single writer so concurrent
	// upserts with the same fingerprint cannot race (§4.5 idempotency).
	mu      sync.Mutex
	entropy *rand.Rand
}

// New opens (or creates) a DuckDB database in the given data directory.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "plotline.duckdb")
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}

	s := &Store{
		DB:      db,
		DataDir: dataDir,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			manuscript_id TEXT NOT NULL,
			description TEXT NOT NULL,
			kind TEXT NOT NULL,
			order_idx INTEGER NOT NULL,
			narrative_time TEXT,
			story_hours DOUBLE,
			location_id TEXT,
			characters TEXT,
			importance INTEGER NOT NULL DEFAULT 0,
			prerequisites TEXT,
			travel_mode TEXT,
			extra TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS distances (
			manuscript_id TEXT NOT NULL,
			loc_a TEXT NOT NULL,
			loc_b TEXT NOT NULL,
			km DOUBLE NOT NULL,
			metadata TEXT,
			PRIMARY KEY (manuscript_id, loc_a, loc_b)
		)`,
		`CREATE TABLE IF NOT EXISTS speed_profiles (
			manuscript_id TEXT PRIMARY KEY,
			speeds TEXT,
			default_speed DOUBLE NOT NULL,
			hours_per_step DOUBLE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS inconsistencies (
			id TEXT PRIMARY KEY,
			manuscript_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			severity TEXT NOT NULL,
			description TEXT NOT NULL,
			suggestion TEXT,
			teaching_point TEXT,
			event_ids TEXT NOT NULL,
			character TEXT,
			fingerprint TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'open',
			resolution_notes TEXT,
			resolved_at TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration %q: %w", stmt[:40], err)
		}
	}

	return nil
}

// WriteEvents replaces a manuscript's full event list. The authoring layer
// owns event CRUD; the engine only ever sees whole snapshots.
func (s *Store) WriteEvents(manuscriptID string, events []model.Event) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events WHERE manuscript_id = ?", manuscriptID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO events (id, manuscript_id, description, kind, order_idx, narrative_time, story_hours, location_id, characters, importance, prerequisites, travel_mode, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		chars, _ := json.Marshal(ev.Characters)
		prereqs, _ := json.Marshal(ev.Prerequisites)
		extra, _ := json.Marshal(ev.Extra)
		var hours any
		if ev.StoryHours != nil {
			hours = *ev.StoryHours
		}
		if _, err := stmt.Exec(ev.ID, manuscriptID, ev.Description, string(ev.Kind), ev.OrderIndex,
			ev.NarrativeTime, hours, ev.LocationID, string(chars), ev.Importance,
			string(prereqs), ev.TravelMode, string(extra)); err != nil {
			return fmt.Errorf("inserting event %s: %w", ev.ID, err)
		}
	}

	return tx.Commit()
}

// ListEvents loads a manuscript's events ordered by narrative order.
func (s *Store) ListEvents(manuscriptID string) ([]model.Event, error) {
	rows, err := s.DB.Query(`SELECT id, manuscript_id, description, kind, order_idx, narrative_time, story_hours, location_id, characters, importance, prerequisites, travel_mode, extra
		FROM events WHERE manuscript_id = ? ORDER BY order_idx`, manuscriptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// GetEvent loads a single event by id.
func (s *Store) GetEvent(id string) (*model.Event, error) {
	row := s.DB.QueryRow(`SELECT id, manuscript_id, description, kind, order_idx, narrative_time, story_hours, location_id, characters, importance, prerequisites, travel_mode, extra
		FROM events WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (model.Event, error) {
	var ev model.Event
	var kind string
	var narrativeTime, locationID, chars, prereqs, mode, extra sql.NullString
	var hours sql.NullFloat64
	if err := row.Scan(&ev.ID, &ev.ManuscriptID, &ev.Description, &kind, &ev.OrderIndex,
		&narrativeTime, &hours, &locationID, &chars, &ev.Importance, &prereqs, &mode, &extra); err != nil {
		return ev, err
	}
	ev.Kind = model.EventKind(kind)
	ev.NarrativeTime = narrativeTime.String
	ev.LocationID = locationID.String
	ev.TravelMode = mode.String
	if hours.Valid {
		h := hours.Float64
		ev.StoryHours = &h
	}
	if chars.Valid {
		json.Unmarshal([]byte(chars.String), &ev.Characters)
	}
	if prereqs.Valid {
		json.Unmarshal([]byte(prereqs.String), &ev.Prerequisites)
	}
	if extra.Valid {
		json.Unmarshal([]byte(extra.String), &ev.Extra)
	}
	return ev, nil
}

// SetDistance upserts a symmetric distance fact. The pair is canonicalized
// before storage so callers may pass either order. Negative distances are
// rejected; zero means co-located.
func (s *Store) SetDistance(manuscriptID, a, b string, km float64, metadata map[string]string) error {
	if km < 0 {
		return fmt.Errorf("distance between %q and %q must not be negative (got %v)", a, b, km)
	}
	locA, locB := travel.CanonicalPair(a, b)
	meta, _ := json.Marshal(metadata)
	_, err := s.DB.Exec(`INSERT OR REPLACE INTO distances (manuscript_id, loc_a, loc_b, km, metadata) VALUES (?, ?, ?, ?, ?)`,
		manuscriptID, locA, locB, km, string(meta))
	return err
}

// GetDistance looks up a distance fact, order-independent. The second return
// distinguishes "unknown" from zero kilometers.
func (s *Store) GetDistance(manuscriptID, a, b string) (float64, bool, error) {
	locA, locB := travel.CanonicalPair(a, b)
	var km float64
	err := s.DB.QueryRow("SELECT km FROM distances WHERE manuscript_id = ? AND loc_a = ? AND loc_b = ?",
		manuscriptID, locA, locB).Scan(&km)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return km, true, nil
}

// ListDistances loads all distance facts for a manuscript.
func (s *Store) ListDistances(manuscriptID string) ([]model.LocationDistance, error) {
	rows, err := s.DB.Query("SELECT manuscript_id, loc_a, loc_b, km, metadata FROM distances WHERE manuscript_id = ? ORDER BY loc_a, loc_b", manuscriptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dists []model.LocationDistance
	for rows.Next() {
		var d model.LocationDistance
		var meta sql.NullString
		if err := rows.Scan(&d.ManuscriptID, &d.LocA, &d.LocB, &d.Km, &meta); err != nil {
			return nil, err
		}
		if meta.Valid {
			json.Unmarshal([]byte(meta.String), &d.Metadata)
		}
		dists = append(dists, d)
	}
	return dists, rows.Err()
}

// GetOrCreateSpeedProfile loads a manuscript's speed profile, lazily creating
// one with the given defaults on first access. Exactly one profile exists per
// manuscript.
func (s *Store) GetOrCreateSpeedProfile(manuscriptID string, defaultSpeed, hoursPerStep float64) (*model.TravelSpeedProfile, error) {
	var speeds sql.NullString
	p := &model.TravelSpeedProfile{ManuscriptID: manuscriptID}
	err := s.DB.QueryRow("SELECT speeds, default_speed, hours_per_step FROM speed_profiles WHERE manuscript_id = ?", manuscriptID).
		Scan(&speeds, &p.DefaultSpeed, &p.HoursPerStep)
	if err == sql.ErrNoRows {
		p.DefaultSpeed = defaultSpeed
		p.HoursPerStep = hoursPerStep
		p.Speeds = map[string]float64{}
		if _, err := s.DB.Exec("INSERT INTO speed_profiles (manuscript_id, speeds, default_speed, hours_per_step) VALUES (?, '{}', ?, ?)",
			manuscriptID, defaultSpeed, hoursPerStep); err != nil {
			return nil, fmt.Errorf("creating speed profile: %w", err)
		}
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	if speeds.Valid {
		json.Unmarshal([]byte(speeds.String), &p.Speeds)
	}
	if p.Speeds == nil {
		p.Speeds = map[string]float64{}
	}
	return p, nil
}

// UpdateSpeeds upserts a manuscript's full speed profile.
func (s *Store) UpdateSpeeds(p *model.TravelSpeedProfile) error {
	speeds, _ := json.Marshal(p.Speeds)
	_, err := s.DB.Exec("INSERT OR REPLACE INTO speed_profiles (manuscript_id, speeds, default_speed, hours_per_step) VALUES (?, ?, ?, ?)",
		p.ManuscriptID, string(speeds), p.DefaultSpeed, p.HoursPerStep)
	return err
}

// UpsertInconsistency records a detected inconsistency, keyed by fingerprint.
// Re-detecting the same issue updates metadata but preserves the resolution
// state, so a dismissal stays sticky. Returns the stored record.
func (s *Store) UpsertInconsistency(inc model.Inconsistency) (*model.Inconsistency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getByFingerprint(inc.Fingerprint)
	if err != nil {
		return nil, err
	}

	ts := now()
	if existing == nil {
		inc.ID = s.newID()
		inc.Status = model.StatusOpen
		inc.CreatedAt = ts
		inc.UpdatedAt = ts
		eventIDs, _ := json.Marshal(inc.EventIDs)
		_, err := s.DB.Exec(`INSERT INTO inconsistencies (id, manuscript_id, kind, severity, description, suggestion, teaching_point, event_ids, character, fingerprint, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inc.ID, inc.ManuscriptID, string(inc.Kind), string(inc.Severity), inc.Description,
			inc.Suggestion, inc.TeachingPoint, string(eventIDs), inc.Character, inc.Fingerprint,
			string(inc.Status), inc.CreatedAt, inc.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("inserting inconsistency: %w", err)
		}
		return &inc, nil
	}

	// Re-detection: refresh metadata (severity may have been recomputed),
	// keep id, status and resolution fields.
	if _, err := s.DB.Exec(`UPDATE inconsistencies SET severity = ?, description = ?, suggestion = ?, teaching_point = ?, updated_at = ? WHERE id = ?`,
		string(inc.Severity), inc.Description, inc.Suggestion, inc.TeachingPoint, ts, existing.ID); err != nil {
		return nil, fmt.Errorf("updating inconsistency: %w", err)
	}
	existing.Severity = inc.Severity
	existing.Description = inc.Description
	existing.Suggestion = inc.Suggestion
	existing.TeachingPoint = inc.TeachingPoint
	existing.UpdatedAt = ts
	return existing, nil
}

func (s *Store) getByFingerprint(fp string) (*model.Inconsistency, error) {
	row := s.DB.QueryRow(selectInconsistency+" WHERE fingerprint = ?", fp)
	inc, err := scanInconsistency(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

const selectInconsistency = `SELECT id, manuscript_id, kind, severity, description, suggestion, teaching_point, event_ids, character, fingerprint, status, resolution_notes, resolved_at, created_at, updated_at FROM inconsistencies`

func scanInconsistency(row rowScanner) (model.Inconsistency, error) {
	var inc model.Inconsistency
	var kind, severity, status string
	var suggestion, teaching, character, notes, resolvedAt sql.NullString
	var eventIDs string
	if err := row.Scan(&inc.ID, &inc.ManuscriptID, &kind, &severity, &inc.Description,
		&suggestion, &teaching, &eventIDs, &character, &inc.Fingerprint, &status,
		&notes, &resolvedAt, &inc.CreatedAt, &inc.UpdatedAt); err != nil {
		return inc, err
	}
	inc.Kind = model.InconsistencyKind(kind)
	inc.Severity = model.Severity(severity)
	inc.Status = model.Status(status)
	inc.Suggestion = suggestion.String
	inc.TeachingPoint = teaching.String
	inc.Character = character.String
	inc.ResolutionNotes = notes.String
	inc.ResolvedAt = resolvedAt.String
	json.Unmarshal([]byte(eventIDs), &inc.EventIDs)
	return inc, nil
}

// GetInconsistency loads a single record by id.
func (s *Store) GetInconsistency(id string) (*model.Inconsistency, error) {
	row := s.DB.QueryRow(selectInconsistency+" WHERE id = ?", id)
	inc, err := scanInconsistency(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("inconsistency %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

// ListInconsistencies loads a manuscript's records, optionally filtered by
// status. Pass "" to list all.
func (s *Store) ListInconsistencies(manuscriptID string, status model.Status) ([]model.Inconsistency, error) {
	query := selectInconsistency + " WHERE manuscript_id = ?"
	args := []any{manuscriptID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at, id"

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incs []model.Inconsistency
	for rows.Next() {
		inc, err := scanInconsistency(rows)
		if err != nil {
			return nil, err
		}
		incs = append(incs, inc)
	}
	return incs, rows.Err()
}

// ResolveInconsistency transitions OPEN -> RESOLVED. Resolving an already
// terminal record is a no-op, not an error.
func (s *Store) ResolveInconsistency(id, notes string) (*model.Inconsistency, error) {
	return s.transition(id, model.StatusResolved, notes)
}

// DismissInconsistency transitions OPEN -> DISMISSED (false positive). The
// dismissal survives re-detection of the identical fact pattern.
func (s *Store) DismissInconsistency(id, notes string) (*model.Inconsistency, error) {
	return s.transition(id, model.StatusDismissed, notes)
}

func (s *Store) transition(id string, to model.Status, notes string) (*model.Inconsistency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inc, err := s.GetInconsistency(id)
	if err != nil {
		return nil, err
	}
	if inc.Status != model.StatusOpen {
		// Already terminal. The losing side of a concurrent race simply
		// observes the applied state.
		return inc, nil
	}

	ts := now()
	if _, err := s.DB.Exec("UPDATE inconsistencies SET status = ?, resolution_notes = ?, resolved_at = ?, updated_at = ? WHERE id = ?",
		string(to), notes, ts, ts, id); err != nil {
		return nil, err
	}
	inc.Status = to
	inc.ResolutionNotes = notes
	inc.ResolvedAt = ts
	inc.UpdatedAt = ts
	return inc, nil
}

// CloseStaleOpen auto-resolves open records whose fingerprint was not
// produced by the latest run: the underlying data changed and the issue no
// longer exists.
func (s *Store) CloseStaleOpen(manuscriptID string, detected map[string]bool) error {
	open, err := s.ListInconsistencies(manuscriptID, model.StatusOpen)
	if err != nil {
		return err
	}
	for _, inc := range open {
		if detected[inc.Fingerprint] {
			continue
		}
		if _, err := s.ResolveInconsistency(inc.ID, "no longer detected"); err != nil {
			return err
		}
	}
	return nil
}

// DeleteManuscript removes all engine data for a manuscript. The only path
// that ever deletes inconsistency records.
func (s *Store) DeleteManuscript(manuscriptID string) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, tbl := range []string{"events", "distances", "speed_profiles", "inconsistencies"} {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE manuscript_id = ?", tbl), manuscriptID); err != nil {
			return fmt.Errorf("clearing %s: %w", tbl, err)
		}
	}
	return tx.Commit()
}

// SetMeta stores a key/value pair (run bookkeeping).
func (s *Store) SetMeta(key, value string) error {
	_, err := s.DB.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// GetMeta loads a meta value, empty when unset.
func (s *Store) GetMeta(key string) string {
	var v sql.NullString
	s.DB.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&v)
	return v.String
}

// EventCount returns the number of events for a manuscript.
func (s *Store) EventCount(manuscriptID string) int {
	var n int
	s.DB.QueryRow("SELECT COUNT(*) FROM events WHERE manuscript_id = ?", manuscriptID).Scan(&n)
	return n
}

// DistanceCount returns the number of distance facts for a manuscript.
func (s *Store) DistanceCount(manuscriptID string) int {
	var n int
	s.DB.QueryRow("SELECT COUNT(*) FROM distances WHERE manuscript_id = ?", manuscriptID).Scan(&n)
	return n
}

// StatusCounts returns inconsistency counts per resolution state.
func (s *Store) StatusCounts(manuscriptID string) map[model.Status]int {
	m := make(map[model.Status]int)
	rows, err := s.DB.Query("SELECT status, COUNT(*) FROM inconsistencies WHERE manuscript_id = ? GROUP BY status", manuscriptID)
	if err != nil {
		return m
	}
	defer rows.Close()
	for rows.Next() {
		var st string
		var cnt int
		rows.Scan(&st, &cnt)
		m[model.Status(st)] = cnt
	}
	return m
}

// Manuscripts lists every manuscript id with stored events.
func (s *Store) Manuscripts() []string {
	var ids []string
	rows, err := s.DB.Query("SELECT DISTINCT manuscript_id FROM events ORDER BY manuscript_id")
	if err != nil {
		return ids
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		rows.Scan(&id)
		ids = append(ids, id)
	}
	return ids
}
