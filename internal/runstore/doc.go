// Package runstore persists run history in SQLite and serializes runs with a
// file lock, so past reconciliation results can be inspected without digging
// through log files.
package runstore
