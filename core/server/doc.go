// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber app from Config: the listen port, the
// API key checked by the auth middleware, and the read and graceful
// shutdown timeouts.
package server
