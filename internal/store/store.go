package store

import (
	"context"
	"database/sql"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/kubev2v/offload-agent/internal/store/migrations"
)

const (
	driverName = "duckdb"
	dbFileName = "offload.duckdb"
)

// NewDB opens a DuckDB database. An empty path or ":memory:" opens an
// in-memory database.
func NewDB(path string) (*sql.DB, error) {
	if path == ":memory:" {
		path = ""
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// DBPath returns the database file inside dataFolder, or ":memory:" when no
// folder is configured.
func DBPath(dataFolder string) string {
	if dataFolder == "" {
		return ":memory:"
	}
	return filepath.Join(dataFolder, dbFileName)
}

// Store provides access to all storage repositories.
type Store struct {
	db    *sql.DB
	calls *CallStore
}

func NewStore(db *sql.DB) *Store {
	qi := QueryInterceptor{db: db}
	return &Store{
		db:    db,
		calls: NewCallStore(qi),
	}
}

func (s *Store) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, s.db)
}

func (s *Store) Calls() *CallStore {
	return s.calls
}

func (s *Store) Close() error {
	return s.db.Close()
}
