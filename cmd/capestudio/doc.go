// Command capestudio manages a library of custom capes, packages them into
// marketplace archives and runs the intercepting proxy that delivers them.
//
// Subcommands:
//
//	cape      add, list, show, set, texture, remove
//	generate  rebuild archives and the catalog document
//	catalog   export or summarize the catalog document
//	inspect   decrypt and verify a built archive
//	proxy     run the interception service, print the CA certificate
//	staging   list or clean build staging directories
//	config    init, validate
package main
