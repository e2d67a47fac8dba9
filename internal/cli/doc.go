// Package cli turns command-line arguments into an app.Config. Flags left
// empty defer to the configuration file; invalid input is reported as an
// ExitError carrying exit code 2.
package cli
