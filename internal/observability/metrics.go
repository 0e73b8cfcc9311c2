package observability

import (
	"time"

	"alcyxob/routine-builder/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	collectionSaveCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routine_builder",
		Subsystem: "persistence",
		Name:      "collection_saves_total",
		Help:      "Number of collection writes grouped by collection and result.",
	}, []string{"collection", "result"})

	lastSaveGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "routine_builder",
		Subsystem: "persistence",
		Name:      "last_successful_save_timestamp_seconds",
		Help:      "Unix timestamp of the most recent batch written without errors.",
	})

	workspacesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "routine_builder",
		Subsystem: "workspace",
		Name:      "open_workspaces",
		Help:      "Number of owner workspaces held in memory.",
	})

	playbackSessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "routine_builder",
		Subsystem: "playback",
		Name:      "active_sessions",
		Help:      "Number of playback sessions held in memory.",
	})
)

func init() {
	prometheus.MustRegister(collectionSaveCounter, lastSaveGauge, workspacesGauge, playbackSessionsGauge)
}

// RecordSave counts one collection write.
func RecordSave(c domain.Collection, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	collectionSaveCounter.WithLabelValues(string(c), result).Inc()
}

// RecordBatchSaved updates the last successful save watermark.
func RecordBatchSaved(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastSaveGauge.Set(float64(ts.Unix()))
}

// SetOpenWorkspaces reports how many workspaces are loaded.
func SetOpenWorkspaces(n int) {
	workspacesGauge.Set(float64(n))
}

// SetPlaybackSessions reports how many playback sessions are live.
func SetPlaybackSessions(n int) {
	playbackSessionsGauge.Set(float64(n))
}
