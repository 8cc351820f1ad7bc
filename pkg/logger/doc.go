// Package logger provides the structured logging interface used across gharchiver.
//
// It wraps zerolog. Console output is human readable with short timestamps;
// when a log file is configured every entry is also appended there as JSON.
//
// Basic Usage:
//
//	err := logger.Initialize(&cfg.Logging)
//	logger.WithField("username", "octocat").Info("Archive started")
//
// Every archive run derives a child logger carrying run_id and username so
// lines from one run can be correlated in a shared log file:
//
//	log := logger.GetLogger().WithFields(map[string]interface{}{
//	    "run_id":   runID,
//	    "username": username,
//	})
//	log.WithError(err).Error("Resource failed")
//
// Tests use NewTestLogger to capture and assert on log calls, or
// NewNopLogger to discard them.
package logger
