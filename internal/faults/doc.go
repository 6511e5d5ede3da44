// Package faults defines the error markers shared by the packager, catalog
// builder, and interception engine.
//
// Errors are built with Wrap so callers can test the failure class with
// errors.Is while the message keeps the component, operation, and cape that
// failed.
package faults
