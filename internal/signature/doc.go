// Package signature writes the signatures.json document that accompanies a
// staged manifest. It must run before the staged tree is encrypted.
package signature
