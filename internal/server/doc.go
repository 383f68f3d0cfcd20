// Package server runs the sonoslink exporter: an HTTP server exposing
// Prometheus metrics and the current zone groups.
//
// Every request to /groups and every scrape of /metrics runs its own
// discovery. Nothing is cached between requests, so the answer always
// reflects the topology at the time of the request.
//
// The server stops cleanly on SIGINT or SIGTERM.
package server
