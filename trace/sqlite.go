package trace

import (
	"database/sql"
	"fmt"
	"sync"

	// Registers the "sqlite3" driver with database/sql.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/CircuitSutra/VeeR-ISS/vm"
)

// SQLiteRecorder records fault events into a SQLite database, inserting
// each event as it is recorded and closing the database on Close or
// process exit. Grounded on the teacher's datarecording.sqliteWriter.
type SQLiteRecorder struct {
	mu   sync.Mutex
	db   *sql.DB
	stmt *sql.Stmt

	pending int
}

// NewSQLiteRecorder opens (creating if necessary) a SQLite database at
// path and prepares it to receive fault events. An empty path derives a
// unique filename from a generated id.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	if path == "" {
		path = "rvcore_faults_" + xid.New().String() + ".sqlite3"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS faults (
		id TEXT PRIMARY KEY,
		va INTEGER,
		cause TEXT,
		reason TEXT
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: create table: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO faults (id, va, cause, reason) VALUES (?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: prepare insert: %w", err)
	}

	r := &SQLiteRecorder{db: db, stmt: stmt}
	atexit.Register(func() { _ = r.Close() })

	return r, nil
}

// RecordFault implements vm.Recorder.
func (r *SQLiteRecorder) RecordFault(ev vm.FaultEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.stmt.Exec(xid.New().String(), ev.VA, ev.Cause.String(), ev.Reason)
	if err != nil {
		return
	}
	r.pending++
}

// Close releases the prepared insert statement and the underlying
// database connection.
func (r *SQLiteRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stmt != nil {
		r.stmt.Close()
		r.stmt = nil
	}
	if r.db == nil {
		return nil
	}
	db := r.db
	r.db = nil

	return db.Close()
}
