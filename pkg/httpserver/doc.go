// Package httpserver wraps net/http's server with environment-driven
// configuration, signal-aware graceful shutdown, and a composable health
// endpoint that doubles as a readiness probe.
package httpserver
