package kafka

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Publish outcomes.
const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

var (
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_events_published_total",
			Help: "Storefront events handed to Kafka by aggregate, action and outcome",
		},
		[]string{"aggregate", "action", "outcome"},
	)

	publishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_event_publish_duration_seconds",
			Help:    "Time spent writing one storefront event to Kafka",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"aggregate"},
	)

	// Cart payloads grow with the number of entries; this tracks how close
	// they get to the broker's message size limit.
	payloadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_event_payload_bytes",
			Help:    "Encoded size of storefront events",
			Buckets: prometheus.ExponentialBuckets(256, 4, 7),
		},
		[]string{"aggregate"},
	)
)

// observePublish records one publish attempt of e. size is the encoded
// message size.
func observePublish(e *Event, size int, start time.Time, err error) {
	agg := string(e.AggregateType)
	publishDuration.WithLabelValues(agg).Observe(time.Since(start).Seconds())
	payloadBytes.WithLabelValues(agg).Observe(float64(size))

	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	eventsPublished.WithLabelValues(agg, actionOf(e), outcome).Inc()
}

// actionOf returns the last topic segment, e.g. "cleared".
func actionOf(e *Event) string {
	topic := e.Topic()
	return topic[strings.LastIndexByte(topic, '.')+1:]
}
