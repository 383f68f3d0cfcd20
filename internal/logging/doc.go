// Package logging provides structured logging for sonoslink.
//
// This package wraps a global zap logger with convenience functions. Logging
// is silent by default so CLI output stays clean; set SONOSLINK_LOG_LEVEL or
// pass --log-level to see protocol traffic.
//
// # Log Levels
//
//   - Debug: SOAP request/response bodies, SSDP datagrams, token scans
//   - Info: discovery results, commands sent
//   - Warn: non-fatal issues (ignored datagrams, partial results)
//   - Error: failures surfaced to the user
//
// # Structured Logging
//
//	logging.Info("Discovery complete",
//	    zap.String("responder", "192.168.1.69"),
//	    zap.Int("groups", 3),
//	)
//
// # Protocol Logging
//
//	logging.LogSOAPRequest(url, soapAction, body)
//	logging.LogSOAPResponse(url, action, statusCode)
//	logging.LogDatagram(remoteAddr, accepted, payload)
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Output goes to stderr in zap's console format.
package logging
