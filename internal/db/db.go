package db

import (
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"
)

type DB struct {
	*sql.DB
}

// NewDB opens the database and ensures the baseline schema exists.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS jobs (
			job_id            TEXT NOT NULL,
			status            TEXT NOT NULL,
			progress          DOUBLE NOT NULL,
			error             TEXT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS exports (
			export_id         TEXT PRIMARY KEY,
			session_id        TEXT,
			kind              TEXT NOT NULL,
			frame_count       BIGINT,
			byte_size         BIGINT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenDB opens the database without touching the schema. Migrations manage
// the schema for the migrate subcommand path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

// RecordJob appends one lifecycle transition for a spectral job. It satisfies
// the job manager's Recorder interface.
func (db *DB) RecordJob(jobID, status string, progress float64, errMsg string) {
	var errVal interface{}
	if errMsg != "" {
		errVal = errMsg
	}
	_, err := db.Exec(
		"INSERT INTO jobs (job_id, status, progress, error) VALUES (?, ?, ?, ?)",
		jobID, status, progress, errVal,
	)
	if err != nil {
		log.Printf("[db] failed to record job %s transition: %v", jobID, err)
	}
}

// JobEvent is one recorded lifecycle transition.
type JobEvent struct {
	JobID     string
	Status    string
	Progress  float64
	Error     string
	Timestamp time.Time
}

func (e *JobEvent) String() string {
	return fmt.Sprintf("JobID: %s, Status: %s, Progress: %.2f, Error: %s", e.JobID, e.Status, e.Progress, e.Error)
}

// JobEvents returns the most recent job transitions, newest first.
func (db *DB) JobEvents(limit int) ([]JobEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(
		"SELECT job_id, status, progress, COALESCE(error, ''), timestamp FROM jobs ORDER BY timestamp DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []JobEvent
	for rows.Next() {
		var e JobEvent
		if err := rows.Scan(&e.JobID, &e.Status, &e.Progress, &e.Error, &e.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Export is the stored metadata for one produced artifact.
type Export struct {
	ExportID   string
	SessionID  string
	Kind       string
	FrameCount int64
	ByteSize   int64
	Timestamp  time.Time
}

// RecordExport stores metadata for a produced artifact (GIF export, TFR image).
func (db *DB) RecordExport(exportID, sessionID, kind string, frameCount, byteSize int64) error {
	_, err := db.Exec(
		"INSERT INTO exports (export_id, session_id, kind, frame_count, byte_size) VALUES (?, ?, ?, ?, ?)",
		exportID, sessionID, kind, frameCount, byteSize,
	)
	return err
}

// Exports returns the most recent export records, newest first.
func (db *DB) Exports(limit int) ([]Export, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(
		"SELECT export_id, COALESCE(session_id, ''), kind, COALESCE(frame_count, 0), COALESCE(byte_size, 0), timestamp FROM exports ORDER BY timestamp DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []Export
	for rows.Next() {
		var e Export
		if err := rows.Scan(&e.ExportID, &e.SessionID, &e.Kind, &e.FrameCount, &e.ByteSize, &e.Timestamp); err != nil {
			return nil, err
		}
		exports = append(exports, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exports, nil
}

func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://scalpview.db", db.DB, &tailsql.DBOptions{
		Label: "Scalpview DB",
	})

	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unixTime := time.Now().Unix()
		backupPath := fmt.Sprintf("backup-%d.db", unixTime)
		if _, err := db.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "gzip")

		backupFile, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
			return
		}

		defer func() {
			backupFile.Close()
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		gzipWriter := gzip.NewWriter(w)
		defer gzipWriter.Close()

		if _, err := io.Copy(gzipWriter, backupFile); err != nil {
			http.Error(w, fmt.Sprintf("Failed to write backup file: %v", err), http.StatusInternalServerError)
			return
		}
	}))
}
