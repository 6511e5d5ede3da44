// Package packager turns a cape definition into the two-level archive the
// client downloads.
//
// A build stages manifest.json, the texture, its meta document, a
// localization pair and contents.json under
// <staging_dir>/<item_id>/pack, signs the manifest, encrypts the tree, zips it
// into ppack0.zip and wraps that alone into <output>/zips/<item_id>_primary.zip.
// The destination is written only after every step has succeeded, and the
// staging directory is removed on every path out of Build.
//
// Builds of the same item are serialized through <staging_dir>/<item_id>.lock.
package packager
