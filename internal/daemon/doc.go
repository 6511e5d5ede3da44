// Package daemon runs the long-lived interception service.
//
// It wires configuration, the cape library, the intercept engine and its
// registry into a single lifecycle with flock-based locking to prevent
// multiple instances. Start loads the cape set from the store, listens for
// proxy traffic and, when configured, serves Prometheus metrics. Stop tears
// the registry down so no pending lookup or minted asset id outlives the
// process run.
//
// Keep orchestration here: request handling lives in intercept and archive
// production in packager.
package daemon
