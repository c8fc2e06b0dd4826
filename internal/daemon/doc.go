// Package daemon ties the job store and orchestrator into a single lifecycle
// with flock-based locking to prevent multiple concurrent instances.
package daemon
