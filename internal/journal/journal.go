// Package journal records simulation history in SQLite: one row per run, the
// events each run emitted and the constellations it formed. The journal is
// write-mostly history for inspection; nothing in it is loaded back into a
// simulation.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/starweave/internal/engine"
	"github.com/talgya/starweave/internal/network"
)

// Journal wraps a SQLite connection.
type Journal struct {
	conn *sqlx.DB
}

// Run describes one recorded simulation run.
type Run struct {
	ID        uuid.UUID `json:"id"`
	Seed      int64     `json:"seed"`
	Stars     int       `json:"stars"`
	StartedAt time.Time `json:"started_at"`
	Finished  bool      `json:"finished"`
	LastTick  uint64    `json:"last_tick"`
}

// ConstellationRecord is a stored constellation.
type ConstellationRecord struct {
	ID       uint32           `json:"id"`
	Members  []network.StarID `json:"members"`
	Color    string           `json:"color"`
	FormedAt uint64           `json:"formed_at"`
}

// Open opens or creates a journal at the given path.
func Open(path string) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		stars INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		last_tick INTEGER,
		stats_json TEXT
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		meta_json TEXT
	);

	CREATE TABLE IF NOT EXISTS constellations (
		run_id TEXT NOT NULL REFERENCES runs(id),
		constellation_id INTEGER NOT NULL,
		formed_at INTEGER NOT NULL,
		members_json TEXT NOT NULL,
		color TEXT NOT NULL,
		PRIMARY KEY (run_id, constellation_id)
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// BeginRun registers a new run and returns its id.
func (j *Journal) BeginRun(seed int64, stars int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := j.conn.Exec(
		"INSERT INTO runs (id, seed, stars, started_at) VALUES (?, ?, ?, ?)",
		id.String(), seed, stars, time.Now().Unix(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin run: %w", err)
	}
	slog.Debug("journal run started", "run", id, "seed", seed, "stars", stars)
	return id, nil
}

// FinishRun stores the final statistics of a run.
func (j *Journal) FinishRun(run uuid.UUID, stats engine.Stats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run, err)
	}
	res, err := j.conn.Exec(
		"UPDATE runs SET last_tick = ?, stats_json = ? WHERE id = ?",
		stats.Tick, string(statsJSON), run.String(),
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", run, sql.ErrNoRows)
	}
	return nil
}

// RecordEvents appends events to a run.
func (j *Journal) RecordEvents(run uuid.UUID, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := j.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(
		"INSERT INTO events (run_id, tick, description, category, meta_json) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		var meta sql.NullString
		if len(e.Meta) > 0 {
			b, err := json.Marshal(e.Meta)
			if err != nil {
				return fmt.Errorf("encode event meta at tick %d: %w", e.Tick, err)
			}
			meta = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := stmt.Exec(run.String(), e.Tick, e.Description, e.Category, meta); err != nil {
			return fmt.Errorf("insert event at tick %d: %w", e.Tick, err)
		}
	}

	return tx.Commit()
}

// RecordConstellation stores a constellation. Recording the same one twice is a no-op.
func (j *Journal) RecordConstellation(run uuid.UUID, c engine.ConstellationSnapshot) error {
	members, err := json.Marshal(c.Members)
	if err != nil {
		return err
	}
	_, err = j.conn.Exec(
		`INSERT OR IGNORE INTO constellations
			(run_id, constellation_id, formed_at, members_json, color)
			VALUES (?, ?, ?, ?, ?)`,
		run.String(), uint32(c.ID), c.FormedAt, string(members), c.Hex,
	)
	if err != nil {
		return fmt.Errorf("insert constellation %d: %w", c.ID, err)
	}
	return nil
}

type eventRow struct {
	Tick        uint64         `db:"tick"`
	Description string         `db:"description"`
	Category    string         `db:"category"`
	Meta        sql.NullString `db:"meta_json"`
}

// RecentEvents returns a run's most recent events, newest first.
func (j *Journal) RecentEvents(run uuid.UUID, limit int) ([]engine.Event, error) {
	var rows []eventRow
	err := j.conn.Select(&rows,
		`SELECT tick, description, category, meta_json FROM events
			WHERE run_id = ? ORDER BY id DESC LIMIT ?`,
		run.String(), limit,
	)
	if err != nil {
		return nil, err
	}

	events := make([]engine.Event, 0, len(rows))
	for _, r := range rows {
		e := engine.Event{Tick: r.Tick, Description: r.Description, Category: r.Category}
		if r.Meta.Valid {
			if err := json.Unmarshal([]byte(r.Meta.String), &e.Meta); err != nil {
				return nil, fmt.Errorf("decode event meta at tick %d: %w", r.Tick, err)
			}
		}
		events = append(events, e)
	}
	return events, nil
}

// EventCounts returns the number of events per category for a run.
func (j *Journal) EventCounts(run uuid.UUID) (map[string]int, error) {
	var rows []struct {
		Category string `db:"category"`
		N        int    `db:"n"`
	}
	err := j.conn.Select(&rows,
		"SELECT category, COUNT(*) AS n FROM events WHERE run_id = ? GROUP BY category",
		run.String(),
	)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Category] = r.N
	}
	return out, nil
}

type constellationRow struct {
	ID       uint32 `db:"constellation_id"`
	FormedAt uint64 `db:"formed_at"`
	Members  string `db:"members_json"`
	Color    string `db:"color"`
}

// Constellations returns a run's constellations in formation order.
func (j *Journal) Constellations(run uuid.UUID) ([]ConstellationRecord, error) {
	var rows []constellationRow
	err := j.conn.Select(&rows,
		`SELECT constellation_id, formed_at, members_json, color FROM constellations
			WHERE run_id = ? ORDER BY constellation_id`,
		run.String(),
	)
	if err != nil {
		return nil, err
	}

	out := make([]ConstellationRecord, 0, len(rows))
	for _, r := range rows {
		rec := ConstellationRecord{ID: r.ID, Color: r.Color, FormedAt: r.FormedAt}
		if err := json.Unmarshal([]byte(r.Members), &rec.Members); err != nil {
			return nil, fmt.Errorf("decode constellation %d: %w", r.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

type runRow struct {
	ID        string        `db:"id"`
	Seed      int64         `db:"seed"`
	Stars     int           `db:"stars"`
	StartedAt int64         `db:"started_at"`
	LastTick  sql.NullInt64 `db:"last_tick"`
}

// Runs returns every recorded run, oldest first.
func (j *Journal) Runs() ([]Run, error) {
	var rows []runRow
	err := j.conn.Select(&rows,
		"SELECT id, seed, stars, started_at, last_tick FROM runs ORDER BY started_at, rowid")
	if err != nil {
		return nil, err
	}

	runs := make([]Run, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("run %q: %w", r.ID, err)
		}
		runs = append(runs, Run{
			ID:        id,
			Seed:      r.Seed,
			Stars:     r.Stars,
			StartedAt: time.Unix(r.StartedAt, 0),
			Finished:  r.LastTick.Valid,
			LastTick:  uint64(r.LastTick.Int64),
		})
	}
	return runs, nil
}
