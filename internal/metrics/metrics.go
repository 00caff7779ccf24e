// Package metrics exposes bot counters in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
)

const namespace = "talaffuz"

// Metrics holds the bot collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	updates               *prometheus.CounterVec
	lessonsIssued         *prometheus.CounterVec
	levelsCompleted       *prometheus.CounterVec
	answers               *prometheus.CounterVec
	contentFetches        *prometheus.CounterVec
	transcriptionDuration *prometheus.HistogramVec
}

// New registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "updates_total",
				Help:      "Telegram updates handled, by kind.",
			},
			[]string{"kind"},
		),
		lessonsIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lessons_issued_total",
				Help:      "Lessons presented to learners.",
			},
			[]string{"level", "placeholder"},
		),
		levelsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "levels_completed_total",
				Help:      "Level runs finished.",
			},
			[]string{"level"},
		),
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answers_total",
				Help:      "Graded answers, by verdict.",
			},
			[]string{"result"},
		),
		contentFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "content_fetches_total",
				Help:      "Lesson text lookups, by result.",
			},
			[]string{"result"},
		),
		transcriptionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transcription_duration_seconds",
				Help:      "Duration of speech-to-text calls.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"provider", "result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.updates,
		m.lessonsIssued,
		m.levelsCompleted,
		m.answers,
		m.contentFetches,
		m.transcriptionDuration,
	)

	return m
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) UpdateHandled(kind string) {
	m.updates.WithLabelValues(kind).Inc()
}

func (m *Metrics) LessonIssued(level entities.Level, placeholder bool) {
	m.lessonsIssued.WithLabelValues(level.String(), strconv.FormatBool(placeholder)).Inc()
}

func (m *Metrics) LevelCompleted(level entities.Level) {
	m.levelsCompleted.WithLabelValues(level.String()).Inc()
}

func (m *Metrics) AnswerGraded(accepted bool) {
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	m.answers.WithLabelValues(result).Inc()
}

func (m *Metrics) ContentFetched(result string) {
	m.contentFetches.WithLabelValues(result).Inc()
}

func (m *Metrics) TranscriptionObserved(provider, result string, d time.Duration) {
	m.transcriptionDuration.WithLabelValues(provider, result).Observe(d.Seconds())
}
