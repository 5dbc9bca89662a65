package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Index is a queryable SQLite copy of the journal, used to tune content:
// which rules fire, how often the simulation carries them out. Writes are
// asynchronous and dropped if the writer falls behind; the JSONL journal
// remains the source of truth.
type Index struct {
	db *sql.DB

	// mu guards ch against a send racing Close.
	mu     sync.RWMutex
	ch     chan Entry
	closed bool
	wg     sync.WaitGroup
	once   sync.Once

	dropped atomic.Int64
}

const indexCommitEvery = 500

// OpenIndex opens or creates the index database at path.
func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty index path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initIndex(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init index: %w", err)
	}

	idx := &Index{db: db, ch: make(chan Entry, 65536)}
	idx.wg.Add(1)
	go func() {
		defer idx.wg.Done()
		idx.loop()
	}()
	return idx, nil
}

func initIndex(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			player TEXT NOT NULL,
			faction TEXT NOT NULL,
			difficulty TEXT,
			tick INTEGER NOT NULL,
			rule_id TEXT,
			action TEXT,
			target TEXT,
			ok INTEGER,
			event TEXT,
			detail TEXT,
			opening TEXT,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_faction_rule ON entries(faction, rule_id, kind);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_player_tick ON entries(player, tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record queues e for insertion. It never blocks.
func (x *Index) Record(e Entry) error {
	if x == nil {
		return nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return nil
	}
	select {
	case x.ch <- e:
	default:
		x.dropped.Add(1)
	}
	return nil
}

// Dropped counts entries discarded because the writer fell behind.
func (x *Index) Dropped() int64 { return x.dropped.Load() }

// Close drains queued entries and closes the database.
func (x *Index) Close() error {
	var err error
	x.once.Do(func() {
		x.mu.Lock()
		x.closed = true
		close(x.ch)
		x.mu.Unlock()
		x.wg.Wait()
		if n := x.dropped.Load(); n > 0 {
			slog.Warn("index dropped entries", "count", n)
		}
		err = x.db.Close()
	})
	return err
}

func (x *Index) loop() {
	insert, err := x.db.Prepare(`INSERT INTO entries(kind,player,faction,difficulty,tick,rule_id,action,target,ok,event,detail,opening,recorded_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		slog.Error("index prepare failed", "error", err)
		for range x.ch {
		}
		return
	}
	defer insert.Close()

	var (
		tx      *sql.Tx
		pending int
	)
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			slog.Warn("index commit failed", "error", err)
		}
		tx, pending = nil, 0
	}

	for e := range x.ch {
		if tx == nil {
			if tx, err = x.db.Begin(); err != nil {
				slog.Warn("index begin failed", "error", err)
				tx = nil
				continue
			}
		}
		var ok sql.NullBool
		if e.OK != nil {
			ok = sql.NullBool{Bool: *e.OK, Valid: true}
		}
		if _, err := tx.Stmt(insert).Exec(
			string(e.Kind), e.Player, e.Faction, string(e.Difficulty), e.Tick,
			e.RuleID, string(e.Action), e.Target, ok, e.Event, e.Detail, e.Opening,
			time.Now().UTC().Format(time.RFC3339Nano),
		); err != nil {
			slog.Warn("index insert failed", "error", err)
			continue
		}
		pending++
		if pending >= indexCommitEvery || len(x.ch) == 0 {
			commit()
		}
	}
	commit()
}

// RuleStat summarizes one rule's history for a faction.
type RuleStat struct {
	RuleID    string
	Decisions int
	Succeeded int
	Failed    int
}

// RuleStats reports per-rule decision and outcome counts for a faction,
// most-decided first.
func (x *Index) RuleStats(ctx context.Context, faction string) ([]RuleStat, error) {
	rows, err := x.db.QueryContext(ctx, `
		SELECT rule_id,
			SUM(CASE WHEN kind = 'decision' THEN 1 ELSE 0 END),
			SUM(CASE WHEN kind = 'result' AND ok = 1 THEN 1 ELSE 0 END),
			SUM(CASE WHEN kind = 'result' AND ok = 0 THEN 1 ELSE 0 END)
		FROM entries
		WHERE faction = ? AND rule_id != ''
		GROUP BY rule_id
		ORDER BY 2 DESC, rule_id`, faction)
	if err != nil {
		return nil, fmt.Errorf("query rule stats: %w", err)
	}
	defer rows.Close()

	var out []RuleStat
	for rows.Next() {
		var s RuleStat
		if err := rows.Scan(&s.RuleID, &s.Decisions, &s.Succeeded, &s.Failed); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type tee []Recorder

// Tee fans every entry out to each recorder, returning the first error.
func Tee(recorders ...Recorder) Recorder {
	return tee(recorders)
}

func (t tee) Record(e Entry) error {
	var first error
	for _, r := range t {
		if err := r.Record(e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
