package main

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS processed_messages (
		id           TEXT PRIMARY KEY,
		processed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS classification_log (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id   TEXT NOT NULL,
		company      TEXT DEFAULT '',
		job_title    TEXT DEFAULT '',
		location     TEXT DEFAULT '',
		status       TEXT DEFAULT '',
		observed     TEXT DEFAULT '',
		llm_provider TEXT DEFAULT '',
		llm_model    TEXT DEFAULT '',
		logged_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_cl_message ON classification_log(message_id);
	CREATE INDEX IF NOT EXISTS idx_cl_date ON classification_log(logged_at);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func MarkMessageProcessed(db *sql.DB, messageID string) error {
	_, err := db.Exec(
		`INSERT OR IGNORE INTO processed_messages (id) VALUES (?)`,
		messageID,
	)
	return err
}

func IsMessageProcessed(db *sql.DB, messageID string) (bool, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM processed_messages WHERE id = ?`,
		messageID,
	).Scan(&count)
	return count > 0, err
}

func CountProcessedMessages(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM processed_messages`).Scan(&count)
	return count, err
}

// ClassificationEntry is one audit row: what the classifier extracted for a
// message and which model produced it.
type ClassificationEntry struct {
	ID          int64
	MessageID   string
	Company     string
	JobTitle    string
	Location    string
	Status      string
	Observed    string
	LLMProvider string
	LLMModel    string
	LoggedAt    time.Time
}

func InsertClassificationEntry(db *sql.DB, e ClassificationEntry) error {
	_, err := db.Exec(
		`INSERT INTO classification_log
		 (message_id, company, job_title, location, status, observed, llm_provider, llm_model)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.MessageID, e.Company, e.JobTitle, e.Location,
		e.Status, e.Observed, e.LLMProvider, e.LLMModel,
	)
	return err
}

func GetClassificationsByDateRange(db *sql.DB, from, to time.Time) ([]ClassificationEntry, error) {
	rows, err := db.Query(
		`SELECT id, message_id, company, job_title, location, status, observed, llm_provider, llm_model, logged_at
		 FROM classification_log
		 WHERE logged_at >= ? AND logged_at < ?
		 ORDER BY logged_at, id`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClassificationEntry
	for rows.Next() {
		var e ClassificationEntry
		if err := rows.Scan(
			&e.ID, &e.MessageID, &e.Company, &e.JobTitle, &e.Location,
			&e.Status, &e.Observed, &e.LLMProvider, &e.LLMModel, &e.LoggedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
