package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	filesDiscovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hopper_files_discovered_total",
			Help: "Matching files observed by the directory watcher",
		},
	)

	tasksCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hopper_tasks_completed_total",
			Help: "Tasks that reached the completed state",
		},
	)

	tasksFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hopper_tasks_failed_total",
			Help: "Tasks that reached the failed state",
		},
	)

	taskDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hopper_task_duration_seconds",
			Help:    "Time from worker pickup to a terminal state",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
		},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hopper_queue_depth",
			Help: "Tasks currently buffered in the work queue",
		},
	)

	journalEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hopper_journal_entries",
			Help: "Journal entries in each status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(filesDiscovered)
	prometheus.MustRegister(tasksCompleted)
	prometheus.MustRegister(tasksFailed)
	prometheus.MustRegister(taskDuration)
	prometheus.MustRegister(queueDepth)
	prometheus.MustRegister(journalEntries)
}

// FileDiscovered counts one matching file seen by the watcher.
func FileDiscovered() {
	filesDiscovered.Inc()
}

// TaskCompleted records a successful run and its duration.
func TaskCompleted(duration time.Duration) {
	tasksCompleted.Inc()
	taskDuration.Observe(duration.Seconds())
}

// TaskFailed records a failed run and its duration.
func TaskFailed(duration time.Duration) {
	tasksFailed.Inc()
	taskDuration.Observe(duration.Seconds())
}

// SetQueueDepth publishes the current work queue backlog.
func SetQueueDepth(depth int) {
	queueDepth.Set(float64(depth))
}

// SetJournalEntries publishes the journal entry count for one status.
func SetJournalEntries(status string, count int) {
	journalEntries.WithLabelValues(status).Set(float64(count))
}
