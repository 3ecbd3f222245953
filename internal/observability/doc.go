// Package observability provides logging and metrics support for the book
// catalog service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for books, chapters, searches, and images
//   - Context helpers for propagating the request ID
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("book_id", id).Msg("book created")
//
// Add entity context to a logger:
//
//	logger = observability.WithBookContext(logger, bookID)
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("book_catalog")
//
// Record metrics:
//
//	metrics.BooksCreated.Inc()
//	metrics.ImagesStored.WithLabelValues("image/png").Inc()
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
