// Package retention prunes old result records.
//
// A Pruner deletes records older than RetentionDays and, when MaxRecords is
// set, the oldest records beyond that count. A Scheduler runs the pruner on a
// cron schedule (robfig/cron standard syntax, e.g. "0 3 * * *").
//
// Count-based pruning uses the store's DeleteOldest when it has one and
// falls back to query, sort and delete-by-cutoff otherwise.
package retention
