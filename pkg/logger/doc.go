// Package logger provides structured logging for the tweet scraper.
//
// It wraps zerolog behind a small Logger interface so components can take a
// logger as a dependency and tests can substitute NewTestLogger:
//
//	logger.Initialize(&cfg.Logging)
//	logger.WithField("batch", 3).Info("Batch fetched")
//	logger.WithError(err).Error("Failed to append rows")
//
// Console output is colourised; when LoggingConfig.File is set, records are
// written as JSON to the file and mirrored to the console.
package logger
