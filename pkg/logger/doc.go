/*
Package logger provides a structured logging solution for the wbclean
application. It wraps uber-go/zap to provide a simpler interface with support
for different verbosity levels and structured logging.

Basic Usage:

	logger := logger.NewLogger(logger.Config{
	    Verbosity: 0,  // Default level (INFO)
	})

	// Simple logging
	logger.Info("Run started")
	logger.Debug("Resolving output path") // Only shown with verbosity >= 1
	logger.Trace("Engine argv built")     // Only shown with verbosity >= 2

Verbosity Levels:

	0: Info, Warn, Error (default)
	1: Debug + Level 0
	2: Trace + Level 1

Structured Logging:

	logger.WithFields(logger.Fields{
	    "component": "discovery",
	    "path":      "/some/path",
	    "count":     42,
	}).Info("Discovery completed")

Encodings:

By default log lines are rendered for humans with a console encoder and
written to os.Stderr alongside the progress display, leaving stdout to the
final summary. Setting Config.JSON emits one JSON object per line instead:

	{
	    "level": "info",
	    "ts": "2026-01-20T15:04:05.000Z",
	    "message": "Discovery completed",
	    "component": "discovery",
	    "path": "/some/path",
	    "count": 42
	}

Thread Safety:

The logger is safe for concurrent use by multiple goroutines.
All logging methods can be called concurrently.

Error Handling Example:

	if err != nil {
	    logger.WithFields(logger.Fields{
	        "error": err.Error(),
	        "file":  filename,
	    }).Error("Failed to process file")
	}
*/
package logger
