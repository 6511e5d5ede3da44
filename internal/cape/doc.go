// Package cape defines the cape definition record shared by the library,
// packager, catalog builder, and interception engine, plus the file and
// identifier names derived from it.
//
// The item identifier is the sole correlation key: archives, catalog entries,
// textures, and intercepted lookups are all addressed by it.
package cape
