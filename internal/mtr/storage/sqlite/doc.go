// Package sqlite persists static maps and recorded agent observations in
// SQLite.
//
// Responsibilities: opening the database with the standard pragmas, applying
// the embedded schema migrations, and the MapStore and SnapshotStore
// repositories.
//
// Dependency rule: sqlite may depend on agent and polyline; domain packages
// never import sqlite.
package sqlite
