// Package testsupport provides shared fixtures for package tests: an isolated
// config, cape textures and an opened cape store.
package testsupport
