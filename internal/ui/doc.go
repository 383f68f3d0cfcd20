// Package ui renders sonoslink's terminal output with Lipgloss.
//
// Output is "run once and exit": a command prints a Header, runs its work
// (discovery runs behind a Bubble Tea spinner when stdout is a terminal) and
// then prints either the zone groups or a Result box.
//
//   - Header: command banner showing the operation and its parameters
//   - GroupView: one zone group, coordinator first
//   - Result: success, failure or warning box; failures carry the
//     troubleshooting tips attached to protocol errors
//
// # Logging Integration
//
// zap logging is silent unless SONOSLINK_LOG_LEVEL or --log-level is set, so
// the styled output is not interleaved with log lines by default.
package ui
