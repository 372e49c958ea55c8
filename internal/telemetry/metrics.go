package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus series exported by the covert-channel process. Names follow the
// go-ampio-server convention of a flat, ungrouped counter/gauge namespace.
var (
	BitsDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "covert_bits_decoded_total",
		Help: "Total request-frame bits decoded off the port-contention channel by winning listeners.",
	})
	RequestFramesValid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "covert_request_frames_valid_total",
		Help: "Total request frames accepted (init sequence and sequence number both valid).",
	})
	RequestFramesInvalid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "covert_request_frames_invalid_total",
		Help: "Total request frames rejected (bad init sequence, Hamming error, or out-of-range sequence number).",
	})
	ListenerTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "covert_listener_timeouts_total",
		Help: "Total listen rounds in which no listener goroutine produced a frame before REQUEST_TIMEOUT.",
	})
	DataFramesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "covert_data_frames_sent_total",
		Help: "Total data frames transmitted in response to a valid request.",
	})
	SampleLatencyNs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "covert_sample_latency_ns",
		Help:    "Distribution of median-smoothed latency samples fed to the bit detector.",
		Buckets: prometheus.ExponentialBuckets(1e6, 1.5, 20),
	})
)
