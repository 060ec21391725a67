package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hoshinonyaruko/snake-in-term/structs"
	_ "github.com/mattn/go-sqlite3"
)

const createScoresTableSQL = `
CREATE TABLE IF NOT EXISTS Scores (
    SessionID TEXT PRIMARY KEY,
    PlayedMs INTEGER NOT NULL,
    Length INTEGER NOT NULL,
    TickMs INTEGER NOT NULL,
    FinishedAt TIMESTAMP NOT NULL
);
`

const createScoresIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_scores_played ON Scores (PlayedMs DESC);
`

// Store keeps finished sessions in sqlite. It implements game.ScoreSink.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and makes sure the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := InitializeDatabase(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func InitializeDatabase(db *sql.DB) error {
	for _, stmt := range []string{createScoresTableSQL, createScoresIndexSQL} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("executing SQL statement %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveScore inserts one finished session.
func (s *Store) SaveScore(score structs.Score) error {
	if score.FinishedAt.IsZero() {
		score.FinishedAt = time.Now()
	}
	_, err := s.db.Exec("INSERT OR REPLACE INTO Scores (SessionID, PlayedMs, Length, TickMs, FinishedAt) VALUES (?, ?, ?, ?, ?)",
		score.SessionID, score.PlayedMs, score.Length, score.TickMs, score.FinishedAt.UTC())
	return err
}

// TopScores returns the longest-surviving sessions first.
func (s *Store) TopScores(limit int) ([]structs.Score, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query("SELECT SessionID, PlayedMs, Length, TickMs, FinishedAt FROM Scores ORDER BY PlayedMs DESC, Length DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []structs.Score
	for rows.Next() {
		var score structs.Score
		if err := rows.Scan(&score.SessionID, &score.PlayedMs, &score.Length, &score.TickMs, &score.FinishedAt); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

// HighScore 分别返回最长存活时间和最大长度，两者不一定来自同一局
func (s *Store) HighScore() (playedMs int64, length int, err error) {
	err = s.db.QueryRow("SELECT COALESCE(MAX(PlayedMs), 0), COALESCE(MAX(Length), 0) FROM Scores").Scan(&playedMs, &length)
	return playedMs, length, err
}
