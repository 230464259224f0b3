package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"lexiclaire/gateway/pkg/results"
)

// SQLite driver names.
const (
	// DriverCGO is mattn/go-sqlite3.
	DriverCGO = "sqlite3"

	// DriverPureGo is modernc.org/sqlite.
	DriverPureGo = "sqlite"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver is DriverCGO or DriverPureGo.
	// Default: DriverCGO
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/results.db",
		Driver:       DriverCGO,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements results.Store using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database and creates the schema if needed.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverCGO
	}
	if config.Driver != DriverCGO && config.Driver != DriverPureGo {
		return nil, results.NewStorageError(BackendSQLite, "open",
			fmt.Errorf("unknown driver %q (want %q or %q)", config.Driver, DriverCGO, DriverPureGo))
	}
	if config.Path == "" {
		return nil, results.NewStorageError(BackendSQLite, "open", errors.New("database path is empty"))
	}

	logger := slog.Default().With("component", "results.storage.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, results.NewStorageError(BackendSQLite, "open", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return results.NewStorageError(BackendSQLite, "enable_wal", err)
		}
	}

	if s.config.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())
		if _, err := s.db.Exec(pragma); err != nil {
			return results.NewStorageError(BackendSQLite, "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return results.NewStorageError(BackendSQLite, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return results.NewStorageError(BackendSQLite, "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return results.NewStorageError(BackendSQLite, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return results.NewStorageError(BackendSQLite, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Store persists a record.
func (s *SQLiteStorage) Store(ctx context.Context, record *results.Record) error {
	tags, err := json.Marshal(nonNilTags(record.Tags))
	if err != nil {
		return results.NewStorageError(BackendSQLite, "store", err)
	}

	_, err = s.db.ExecContext(ctx, insertRecord,
		record.ID, record.RequestID, record.Operation,
		record.Title, string(record.Status), nullString(string(record.RiskLevel)), string(tags),
		nullString(record.Size), nullString(record.Type),
		nullString(record.ErrorKind), nullString(record.ErrorMessage),
		record.Attempts, record.Duration.Milliseconds(), record.CreatedAt.UnixNano(),
	)
	if err != nil {
		return results.NewStorageError(BackendSQLite, "store", err)
	}
	return nil
}

// Query retrieves records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *results.Query) ([]*results.Record, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	where, args := buildWhereClause(query)

	sqlQuery := "SELECT " + selectColumns + " FROM results"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	order := "DESC"
	limit, offset := defaultLimit, 0
	if query != nil {
		if query.SortOrder == "asc" {
			order = "ASC"
		}
		if query.Limit > 0 {
			limit = query.Limit
		}
		offset = query.Offset
	}
	sqlQuery += fmt.Sprintf(" ORDER BY created_at %s LIMIT %d", order, limit)
	if offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, results.NewStorageError(BackendSQLite, "query", err)
	}
	defer rows.Close()

	records := []*results.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, results.NewStorageError(BackendSQLite, "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, results.NewStorageError(BackendSQLite, "query", err)
	}

	return records, nil
}

// Count returns the number of records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *results.Query) (int64, error) {
	where, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM results"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, results.NewStorageError(BackendSQLite, "count", err)
	}
	return count, nil
}

// Delete removes records matching the query filters.
func (s *SQLiteStorage) Delete(ctx context.Context, query *results.Query) (int64, error) {
	where, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM results"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	res, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, results.NewStorageError(BackendSQLite, "delete", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, results.NewStorageError(BackendSQLite, "delete", err)
	}
	return count, nil
}

// DeleteOldest removes all but the newest keep records.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM results WHERE id NOT IN (
			SELECT id FROM results ORDER BY created_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, results.NewStorageError(BackendSQLite, "delete_oldest", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, results.NewStorageError(BackendSQLite, "delete_oldest", err)
	}
	return count, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return results.NewStorageError(BackendSQLite, "ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return results.NewStorageError(BackendSQLite, "close", err)
	}
	s.logger.Info("SQLite storage closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause (without the keyword) and its
// arguments from query filters.
func buildWhereClause(query *results.Query) (string, []interface{}) {
	if query == nil {
		return "", nil
	}

	var conditions []string
	var args []interface{}

	if query.StartTime != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, query.StartTime.UnixNano())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, query.EndTime.UnixNano())
	}
	if query.Operation != "" {
		conditions = append(conditions, "operation = ?")
		args = append(args, query.Operation)
	}
	if query.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(query.Status))
	}
	if query.RequestID != "" {
		conditions = append(conditions, "request_id = ?")
		args = append(args, query.RequestID)
	}

	return strings.Join(conditions, " AND "), args
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*results.Record, error) {
	var (
		r                                results.Record
		status, tags                     string
		risk, size, typ, errKind, errMsg sql.NullString
		durationMs, createdAt            int64
	)

	err := row.Scan(
		&r.ID, &r.RequestID, &r.Operation,
		&r.Title, &status, &risk, &tags, &size, &typ,
		&errKind, &errMsg,
		&r.Attempts, &durationMs, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	r.Status = results.Status(status)
	r.RiskLevel = results.RiskLevel(risk.String)
	r.Size = size.String
	r.Type = typ.String
	r.ErrorKind = errKind.String
	r.ErrorMessage = errMsg.String
	r.Duration = time.Duration(durationMs) * time.Millisecond
	r.CreatedAt = time.Unix(0, createdAt)

	if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}

	return &r, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
