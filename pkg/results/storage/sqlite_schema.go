package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the results database schema.
// Timestamps are stored as Unix nanoseconds so both drivers read them back
// identically.
const Schema = `
CREATE TABLE IF NOT EXISTS results (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,
    operation TEXT NOT NULL,

    title TEXT NOT NULL,
    status TEXT NOT NULL,
    risk_level TEXT,
    tags TEXT NOT NULL,
    size TEXT,
    type TEXT,

    error_kind TEXT,
    error_message TEXT,

    attempts INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at);
CREATE INDEX IF NOT EXISTS idx_results_operation ON results(operation);
CREATE INDEX IF NOT EXISTS idx_results_status ON results(status);
CREATE INDEX IF NOT EXISTS idx_results_request_id ON results(request_id);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// InsertSchemaVersion records the schema version once.
const InsertSchemaVersion = `
INSERT OR IGNORE INTO schema_version (version, applied_at)
VALUES (?, strftime('%s', 'now'))
`

// GetSchemaVersion reads the newest applied schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1
`

const insertRecord = `
INSERT INTO results (
    id, request_id, operation,
    title, status, risk_level, tags, size, type,
    error_kind, error_message,
    attempts, duration_ms, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectColumns = `
id, request_id, operation,
title, status, risk_level, tags, size, type,
error_kind, error_message,
attempts, duration_ms, created_at
`
