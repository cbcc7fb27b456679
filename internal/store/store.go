// Package store persists captured requests and exchanges in SQLite and
// resolves the two lookups the trace panel depends on: the originating
// request's method and the decoded response body text.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sadopc/wiretap/internal/capture"
)

// Store manages exchange persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the store at the given path. Use ":memory:"
// for an ephemeral store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS requests (
			id         TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			method     TEXT NOT NULL,
			url        TEXT NOT NULL,
			headers    TEXT,
			body       BLOB
		);
		CREATE TABLE IF NOT EXISTS responses (
			id              TEXT PRIMARY KEY,
			request_id      TEXT NOT NULL,
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL,
			state           TEXT NOT NULL,
			url             TEXT NOT NULL,
			version         TEXT,
			status          INTEGER,
			status_reason   TEXT,
			remote_addr     TEXT,
			body_path       TEXT,
			content_length  INTEGER,
			elapsed_ns      INTEGER,
			error           TEXT,
			request_headers TEXT,
			headers         TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_responses_created ON responses(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_responses_request ON responses(request_id);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// CreateRequest persists a request record.
func (s *Store) CreateRequest(r *capture.Request) error {
	headers, err := json.Marshal(r.Headers)
	if err != nil {
		return fmt.Errorf("encoding request headers: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO requests (id, created_at, method, url, headers, body)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt, r.Method, r.URL, string(headers), r.Body,
	)
	if err != nil {
		return fmt.Errorf("inserting request: %w", err)
	}
	return nil
}

// GetRequest returns a request by id, or ok=false when absent.
func (s *Store) GetRequest(id string) (*capture.Request, bool, error) {
	var r capture.Request
	var headers string
	err := s.db.QueryRow(`
		SELECT id, created_at, method, url, headers, body
		FROM requests WHERE id = ?`, id).
		Scan(&r.ID, &r.CreatedAt, &r.Method, &r.URL, &headers, &r.Body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading request: %w", err)
	}
	if err := json.Unmarshal([]byte(headers), &r.Headers); err != nil {
		return nil, false, fmt.Errorf("decoding request headers: %w", err)
	}
	return &r, true, nil
}

// RequestMethod resolves the method of the originating request.
// A missing request (still pending, or deleted) is not an error: the
// caller renders a blank method instead.
func (s *Store) RequestMethod(requestID string) (string, bool) {
	var method string
	err := s.db.QueryRow(`SELECT method FROM requests WHERE id = ?`, requestID).Scan(&method)
	if err != nil {
		return "", false
	}
	return method, true
}

// SaveExchange inserts or replaces an exchange record.
func (s *Store) SaveExchange(ex *capture.Exchange) error {
	reqHeaders, err := json.Marshal(ex.RequestHeaders)
	if err != nil {
		return fmt.Errorf("encoding request headers: %w", err)
	}
	headers, err := json.Marshal(ex.Headers)
	if err != nil {
		return fmt.Errorf("encoding response headers: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO responses
			(id, request_id, created_at, updated_at, state, url, version, status,
			 status_reason, remote_addr, body_path, content_length, elapsed_ns,
			 error, request_headers, headers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.RequestID, ex.CreatedAt, ex.UpdatedAt, string(ex.State), ex.URL,
		ex.Version, ex.Status, ex.StatusReason, ex.RemoteAddr, ex.BodyPath,
		ex.ContentLength, ex.Elapsed.Nanoseconds(), ex.Error,
		string(reqHeaders), string(headers),
	)
	if err != nil {
		return fmt.Errorf("saving exchange: %w", err)
	}
	return nil
}

// GetExchange returns an exchange by id.
func (s *Store) GetExchange(id string) (*capture.Exchange, error) {
	row := s.db.QueryRow(`
		SELECT id, request_id, created_at, updated_at, state, url, version, status,
		       status_reason, remote_addr, body_path, content_length, elapsed_ns,
		       error, request_headers, headers
		FROM responses WHERE id = ?`, id)
	ex, err := scanExchange(row)
	if err != nil {
		return nil, fmt.Errorf("loading exchange: %w", err)
	}
	return ex, nil
}

// ListExchanges returns exchanges, most recent first.
func (s *Store) ListExchanges(limit int) ([]*capture.Exchange, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT id, request_id, created_at, updated_at, state, url, version, status,
		       status_reason, remote_addr, body_path, content_length, elapsed_ns,
		       error, request_headers, headers
		FROM responses
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges: %w", err)
	}
	defer rows.Close()

	var out []*capture.Exchange
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

// DeleteExchange removes an exchange and its body file.
func (s *Store) DeleteExchange(id string) error {
	ex, err := s.GetExchange(id)
	if err != nil {
		return err
	}
	if ex.BodyPath != "" {
		os.Remove(ex.BodyPath)
	}
	_, err = s.db.Exec(`DELETE FROM responses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting exchange: %w", err)
	}
	return nil
}

// Clear removes all exchanges and requests.
func (s *Store) Clear() error {
	rows, err := s.db.Query(`SELECT body_path FROM responses WHERE body_path != ''`)
	if err != nil {
		return fmt.Errorf("listing body files: %w", err)
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return err
		}
		paths = append(paths, p)
	}
	rows.Close()
	for _, p := range paths {
		os.Remove(p)
	}
	_, err = s.db.Exec(`DELETE FROM responses; DELETE FROM requests;`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExchange(row scanner) (*capture.Exchange, error) {
	var ex capture.Exchange
	var state, reqHeaders, headers string
	var elapsedNs int64
	err := row.Scan(&ex.ID, &ex.RequestID, &ex.CreatedAt, &ex.UpdatedAt, &state,
		&ex.URL, &ex.Version, &ex.Status, &ex.StatusReason, &ex.RemoteAddr,
		&ex.BodyPath, &ex.ContentLength, &elapsedNs, &ex.Error,
		&reqHeaders, &headers)
	if err != nil {
		return nil, err
	}
	ex.State = capture.State(state)
	ex.Elapsed = time.Duration(elapsedNs)
	if err := json.Unmarshal([]byte(reqHeaders), &ex.RequestHeaders); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(headers), &ex.Headers); err != nil {
		return nil, err
	}
	return &ex, nil
}
