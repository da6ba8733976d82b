package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/masomo-reports/core"
	"github.com/trezcool/masomo-reports/core/report"
	"github.com/trezcool/masomo-reports/storage/database"
	"github.com/trezcool/masomo-reports/storage/database/inmem"
)

// FixturesDir is the directory of the sample collections.
func FixturesDir() string {
	return filepath.Join(core.Getwd(), "assets", "fixtures")
}

// LoadDB returns an in-memory store holding the sample collections.
func LoadDB(t *testing.T) *inmemdb.DB {
	t.Helper()
	db, err := inmemdb.Load(FixturesDir())
	if err != nil {
		t.Fatalf("LoadDB() failed: %v", err)
	}
	return db
}

// PrepareDB connects to the database named by TEST_DATABASE_URL, migrates it and empties the
// records table. The test is skipped when no database is configured.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = db.PingContext(context.Background()); err != nil {
		t.Fatalf("PrepareDB() ping failed: %v", err)
	}
	if err = database.Migrate(db.DB); err != nil {
		t.Fatalf("PrepareDB() migrate failed: %v", err)
	}
	if _, err = db.Exec("TRUNCATE records RESTART IDENTITY"); err != nil {
		t.Fatalf("PrepareDB() truncate failed: %v", err)
	}
	return db
}

// Record builds a record from alternating keys and values.
func Record(kv ...interface{}) report.Record {
	rec := make(report.Record, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		rec = append(rec, report.Field{Key: kv[i].(string), Value: kv[i+1]})
	}
	return rec
}

func User(id, name, role string, extra ...interface{}) report.Record {
	rec := Record("_id", id, "name", name, "email", id+"@masomo.test", "password", "hash", "role", role)
	return append(rec, Record(extra...)...)
}

// Records builds n records of collection with ids "<prefix>-<i>".
func Records(prefix string, n int) []report.Record {
	records := make([]report.Record, n)
	for i := range records {
		records[i] = Record("_id", fmt.Sprintf("%s-%d", prefix, i), "title", fmt.Sprintf("%s %d", prefix, i), "__v", 0)
	}
	return records
}

// LogEntry is a call recorded by Logger.
type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records log calls.
type Logger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

// Count is the number of entries logged at level.
func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}
