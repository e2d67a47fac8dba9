// Package app contains the core application logic. It wires the configured
// bus, the hub, and the health/metrics server together and runs them,
// decoupled from any specific entrypoint like a CLI.
package app
