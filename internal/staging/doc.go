// Package staging manages the per-build working directories under
// paths.staging_dir.
//
// Each build owns <staging_dir>/<item_id>/ and holds <staging_dir>/<item_id>.lock
// for its duration. Directories left behind by a crashed run are removed by
// CleanStale; a directory whose lock is currently held is never touched.
package staging
