// Package capestore persists the cape library in SQLite.
//
// The schema is embedded and versioned through a schema_version table. A
// database written by a different schema version is rejected; delete it and
// re-add the capes.
package capestore
