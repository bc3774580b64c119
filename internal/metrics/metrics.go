// Package metrics собирает Prometheus-метрики движка раундов и отдаёт их для скрейпа.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Исходы голосования.
const (
	VoteApplied           = "applied"
	VoteRejectedElsewhere = "rejected_elsewhere"
	VoteNoop              = "noop"
)

// Исходы слияния.
const (
	MergeApplied       = "merged"
	MergeAlreadyMerged = "already_merged"
	MergeDuplicate     = "duplicate"
)

// RoundMetrics - интерфейс сбора метрик для сервисного слоя и консьюмера.
type RoundMetrics interface {
	RecordExtensionSubmitted()
	RecordVote(outcome string)
	RecordMerge(outcome string)
	RecordChapterOpened()
	RecordStoryCompleted()
	RecordConflictRetry(operation string)
	RecordCloseRequest(result string)
}

// Collector - реализация RoundMetrics на Prometheus.
type Collector struct {
	extensionsSubmitted prometheus.Counter
	votes               *prometheus.CounterVec
	merges              *prometheus.CounterVec
	chaptersOpened      prometheus.Counter
	storiesCompleted    prometheus.Counter
	conflictRetries     *prometheus.CounterVec
	closeRequests       *prometheus.CounterVec
}

var _ RoundMetrics = (*Collector)(nil)

// NewCollector создает Collector и регистрирует метрики в reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		extensionsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rounds_extensions_submitted_total",
			Help: "Number of extensions submitted to rounds",
		}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rounds_votes_total",
			Help: "Vote casts by outcome",
		}, []string{"outcome"}),
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rounds_merges_total",
			Help: "Merge requests by outcome",
		}, []string{"outcome"}),
		chaptersOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rounds_chapters_opened_total",
			Help: "Chapters opened by budget split or explicit request",
		}),
		storiesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rounds_stories_completed_total",
			Help: "Stories that reached their total word count",
		}),
		conflictRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rounds_conflict_retries_total",
			Help: "Retries after optimistic concurrency conflicts",
		}, []string{"operation"}),
		closeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rounds_close_requests_total",
			Help: "Round close requests consumed from the queue by result",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.extensionsSubmitted,
		c.votes,
		c.merges,
		c.chaptersOpened,
		c.storiesCompleted,
		c.conflictRetries,
		c.closeRequests,
	)
	return c
}

func (c *Collector) RecordExtensionSubmitted() { c.extensionsSubmitted.Inc() }

func (c *Collector) RecordVote(outcome string) { c.votes.WithLabelValues(outcome).Inc() }

func (c *Collector) RecordMerge(outcome string) { c.merges.WithLabelValues(outcome).Inc() }

func (c *Collector) RecordChapterOpened() { c.chaptersOpened.Inc() }

func (c *Collector) RecordStoryCompleted() { c.storiesCompleted.Inc() }

func (c *Collector) RecordConflictRetry(operation string) {
	c.conflictRetries.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordCloseRequest(result string) {
	c.closeRequests.WithLabelValues(result).Inc()
}

// Nop ничего не записывает. Для тестов и запуска без метрик.
type Nop struct{}

var _ RoundMetrics = Nop{}

func (Nop) RecordExtensionSubmitted() {}
func (Nop) RecordVote(string) {}
func (Nop) RecordMerge(string) {}
func (Nop) RecordChapterOpened() {}
func (Nop) RecordStoryCompleted() {}
func (Nop) RecordConflictRetry(string) {}
func (Nop) RecordCloseRequest(string) {}

// Handler возвращает HTTP-обработчик для скрейпа Prometheus.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
