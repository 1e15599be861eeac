package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/worldexplorers/placement/internal/assessment"

	_ "modernc.org/sqlite"
)

// Store is the persistence collaborator: it owns the append-only
// collection of finalized placement results, the evaluator auth
// sessions, and a small metadata table.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		id TEXT PRIMARY KEY,
		student_name TEXT NOT NULL,
		stage1_answers TEXT NOT NULL DEFAULT '{}',
		stage2_answers TEXT NOT NULL DEFAULT '{}',
		speaking_scores TEXT NOT NULL DEFAULT '{}',
		notes TEXT NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		audio_url TEXT NOT NULL DEFAULT '',
		report_draft TEXT NOT NULL DEFAULT '',
		is_synced INTEGER NOT NULL DEFAULT 0,
		total_score INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1,
		team TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AppendResult appends one finalized placement result. The collection
// is append-only: an id can never be written twice.
func (s *Store) AppendResult(r assessment.Result) error {
	stage1, err := json.Marshal(r.Stage1Answers)
	if err != nil {
		return fmt.Errorf("marshal stage1 answers: %w", err)
	}
	stage2, err := json.Marshal(r.Stage2Answers)
	if err != nil {
		return fmt.Errorf("marshal stage2 answers: %w", err)
	}
	speaking, err := json.Marshal(r.SpeakingScores)
	if err != nil {
		return fmt.Errorf("marshal speaking scores: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO results (id, student_name, stage1_answers, stage2_answers, speaking_scores,
		 notes, photo_url, audio_url, report_draft, is_synced, total_score, level, team, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StudentName, string(stage1), string(stage2), string(speaking),
		r.Notes, r.PhotoURL, r.AudioURL, r.ReportDraft, r.IsSynced,
		r.TotalScore, r.Level, r.Team, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append result %s: %w", r.ID, err)
	}
	slog.Info("archived placement result", "id", r.ID, "student", r.StudentName, "team", r.Team, "score", r.TotalScore)
	return nil
}

// ListResults returns the full results collection, newest first.
// A row whose stored answer JSON no longer parses is skipped with a
// warning; a damaged collection is never an error, only smaller.
func (s *Store) ListResults() ([]assessment.Result, error) {
	rows, err := s.db.Query(
		`SELECT id, student_name, stage1_answers, stage2_answers, speaking_scores,
		 notes, photo_url, audio_url, report_draft, is_synced, total_score, level, team, created_at
		 FROM results ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []assessment.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			slog.Warn("skipping unreadable result row", "error", err)
			continue
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetResult returns one result by id, or (nil, nil) if absent.
func (s *Store) GetResult(id string) (*assessment.Result, error) {
	row := s.db.QueryRow(
		`SELECT id, student_name, stage1_answers, stage2_answers, speaking_scores,
		 notes, photo_url, audio_url, report_draft, is_synced, total_score, level, team, created_at
		 FROM results WHERE id = ?`, id,
	)
	r, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindSyncedByName returns the most recent synced result whose student
// name matches case-insensitively, or (nil, nil). A miss does not
// distinguish "no such student" from "exists but not yet synced".
func (s *Store) FindSyncedByName(name string) (*assessment.Result, error) {
	row := s.db.QueryRow(
		`SELECT id, student_name, stage1_answers, stage2_answers, speaking_scores,
		 notes, photo_url, audio_url, report_draft, is_synced, total_score, level, team, created_at
		 FROM results WHERE lower(student_name) = ? AND is_synced = 1
		 ORDER BY created_at DESC, id LIMIT 1`,
		strings.ToLower(name),
	)
	r, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ResultCount returns the number of archived results.
func (s *Store) ResultCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (assessment.Result, error) {
	var (
		r        assessment.Result
		stage1   string
		stage2   string
		speaking string
		created  time.Time
	)
	err := row.Scan(
		&r.ID, &r.StudentName, &stage1, &stage2, &speaking,
		&r.Notes, &r.PhotoURL, &r.AudioURL, &r.ReportDraft, &r.IsSynced,
		&r.TotalScore, &r.Level, &r.Team, &created,
	)
	if err != nil {
		return assessment.Result{}, err
	}
	r.CreatedAt = created
	if err := json.Unmarshal([]byte(stage1), &r.Stage1Answers); err != nil {
		return assessment.Result{}, fmt.Errorf("result %s stage1 answers: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(stage2), &r.Stage2Answers); err != nil {
		return assessment.Result{}, fmt.Errorf("result %s stage2 answers: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(speaking), &r.SpeakingScores); err != nil {
		return assessment.Result{}, fmt.Errorf("result %s speaking scores: %w", r.ID, err)
	}
	return r, nil
}

// SetMetadata upserts a key-value pair in the metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}
