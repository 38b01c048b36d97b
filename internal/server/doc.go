// Package server provides the HTTP server for the habit dashboard and API.
//
// This package is internal to habitboard and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded single-screen page at "/"
//   - REST API: "/api/habits" to list and add, "/api/habits/{id}/toggle" to toggle
//   - Server-Sent Events: Collection snapshots at "/api/sse"
//
// Every request carries an X-Request-ID (generated when absent) and is
// logged on completion. The server supports graceful shutdown via context
// cancellation, with a 5-second timeout for in-flight requests.
package server
