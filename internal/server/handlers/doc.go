// Package handlers implements the daemon's HTTP endpoints: triggering
// acquisitions, serving the acquisition history projection, and the
// monitoring surface (health, readiness, status).
package handlers
