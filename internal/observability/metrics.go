package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the book catalog service.
// Metrics are organized by subsystem: books, chapters, searches, and images.
// All counters and histograms are registered via promauto for automatic
// registration with the default Prometheus registry.
type Metrics struct {
	// BooksCreated counts the total number of books created.
	BooksCreated prometheus.Counter

	// ChaptersCreated counts the total number of chapters created.
	ChaptersCreated prometheus.Counter

	// ChapterConflicts counts chapter inserts rejected for a duplicate
	// (book, number) pair.
	ChapterConflicts prometheus.Counter

	// SearchesTotal counts title searches executed.
	SearchesTotal prometheus.Counter

	// SearchDuration observes search duration in seconds.
	SearchDuration prometheus.Histogram

	// SearchResults observes the distribution of total matches per search.
	SearchResults prometheus.Histogram

	// ImagesStored counts image uploads persisted, labeled by content type.
	ImagesStored *prometheus.CounterVec

	// ImagesServed counts image downloads, labeled by content type.
	ImagesServed *prometheus.CounterVec

	// ImageBytes observes uploaded image payload sizes in bytes.
	ImageBytes prometheus.Histogram

	// IntegrityFailures counts detected metadata/blob disagreements.
	IntegrityFailures prometheus.Counter

	// RequestsTotal counts HTTP requests, labeled by route and status class.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes HTTP request duration in seconds, labeled by route.
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		BooksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "books_created_total",
			Help:      "Total number of books created",
		}),
		ChaptersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chapters_created_total",
			Help:      "Total number of chapters created",
		}),
		ChapterConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chapter_conflicts_total",
			Help:      "Total number of chapter inserts rejected for a duplicate number",
		}),
		SearchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of title searches executed",
		}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Title search duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SearchResults: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Distribution of total matches per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		ImagesStored: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_stored_total",
			Help:      "Total number of image uploads persisted",
		}, []string{"content_type"}),
		ImagesServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_served_total",
			Help:      "Total number of image downloads served",
		}, []string{"content_type"}),
		ImageBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_bytes",
			Help:      "Uploaded image payload sizes in bytes",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		IntegrityFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_failures_total",
			Help:      "Total number of detected metadata/blob disagreements",
		}),
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"route", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// RecordBookCreated records that a book has been created.
func (m *Metrics) RecordBookCreated() {
	m.BooksCreated.Inc()
}

// RecordChapterCreated records that a chapter has been created.
func (m *Metrics) RecordChapterCreated() {
	m.ChaptersCreated.Inc()
}

// RecordChapterConflict records a chapter insert rejected for a duplicate number.
func (m *Metrics) RecordChapterConflict() {
	m.ChapterConflicts.Inc()
}

// RecordSearch records a completed title search.
func (m *Metrics) RecordSearch(totalMatches int64, durationSeconds float64) {
	m.SearchesTotal.Inc()
	m.SearchDuration.Observe(durationSeconds)
	m.SearchResults.Observe(float64(totalMatches))
}

// RecordImageStored records a persisted image upload.
func (m *Metrics) RecordImageStored(contentType string, sizeBytes int) {
	m.ImagesStored.WithLabelValues(contentType).Inc()
	m.ImageBytes.Observe(float64(sizeBytes))
}

// RecordImageServed records a served image download.
func (m *Metrics) RecordImageServed(contentType string) {
	m.ImagesServed.WithLabelValues(contentType).Inc()
}

// RecordIntegrityFailure records a detected metadata/blob disagreement.
func (m *Metrics) RecordIntegrityFailure() {
	m.IntegrityFailures.Inc()
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(route, status string, durationSeconds float64) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(durationSeconds)
}
