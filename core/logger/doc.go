// Package logger provides a structured logging facility based on Zap.
//
// It builds a production (json) or development (console) logger from Config
// and offers helpers that attach correlation fields:
//
//   - WithRayID adds the request id stored by the rayid middleware
//   - WithPass adds the pass and budget ids of a reconciliation pass
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Pass failed", zap.Error(err))
package logger
