package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/btaeng/trivia-map/internal/model"
	_ "github.com/duckdb/duckdb-go/v2"
)

// Store keeps the exclusion set in an in-memory DuckDB database. It is
// always opened without a file path, so its contents end with the process.
type Store struct {
	DB *sql.DB
}

// New opens a fresh in-memory DuckDB database.
func New() (*Store, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}

	s := &Store{DB: db}
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

func (s *Store) migrate() error {
	stmts := []string{
		"CREATE SEQUENCE IF NOT EXISTS asked_questions_seq",
		`CREATE TABLE IF NOT EXISTS exclusion_keys (
			location TEXT NOT NULL,
			category TEXT NOT NULL,
			PRIMARY KEY (location, category)
		)`,
		`CREATE TABLE IF NOT EXISTS asked_questions (
			id BIGINT PRIMARY KEY DEFAULT nextval('asked_questions_seq'),
			location TEXT NOT NULL,
			category TEXT NOT NULL,
			question TEXT NOT NULL,
			asked_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
			UNIQUE (location, category, question)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration %.60q: %w", stmt, err)
		}
	}
	return nil
}

// Questions returns the questions issued for key in insertion order and
// registers the key if it is new.
func (s *Store) Questions(ctx context.Context, key model.ExclusionKey) ([]string, error) {
	if _, err := s.DB.ExecContext(ctx,
		"INSERT OR IGNORE INTO exclusion_keys (location, category) VALUES (?, ?)",
		key.Location, key.Category); err != nil {
		return nil, fmt.Errorf("registering key: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx,
		"SELECT question FROM asked_questions WHERE location = ? AND category = ? ORDER BY id",
		key.Location, key.Category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []string{}
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Add records a question for key. Duplicates are ignored.
func (s *Store) Add(ctx context.Context, key model.ExclusionKey, question string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO exclusion_keys (location, category) VALUES (?, ?)",
		key.Location, key.Category); err != nil {
		return fmt.Errorf("registering key: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO asked_questions (location, category, question) VALUES (?, ?, ?)",
		key.Location, key.Category, question); err != nil {
		return fmt.Errorf("inserting question: %w", err)
	}
	return tx.Commit()
}

// Stats returns the number of questions per key, sorted by key.
func (s *Store) Stats(ctx context.Context) ([]model.ExclusionStat, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT k.location, k.category, COUNT(q.id)
		FROM exclusion_keys k
		LEFT JOIN asked_questions q ON q.location = k.location AND q.category = k.category
		GROUP BY k.location, k.category
		ORDER BY k.location, k.category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []model.ExclusionStat{}
	for rows.Next() {
		var st model.ExclusionStat
		if err := rows.Scan(&st.Key.Location, &st.Key.Category, &st.Count); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// QuestionCount returns the total number of recorded questions.
func (s *Store) QuestionCount(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM asked_questions").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting questions: %w", err)
	}
	return n, nil
}
