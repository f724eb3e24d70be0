package metrics

import (
	"net/http"

	"github.com/btaeng/trivia-map/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure stages reported on TriviaFailuresTotal.
const (
	StageRequest = "request"
	StageOracle  = "oracle"
	StageParse   = "parse"
	StageShape   = "shape"
	StageCache   = "cache"
)

var (
	TriviaRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trivia_requests_total",
		Help: "Total trivia generation requests by category",
	}, []string{"category"})
	TriviaFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trivia_failures_total",
		Help: "Total trivia generation failures by stage",
	}, []string{"stage"})
	OracleDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trivia_oracle_duration_ms",
		Help:    "Oracle call duration in milliseconds",
		Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 32000},
	}, []string{"provider"})
	ExclusionQuestionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trivia_exclusion_questions_total",
		Help: "Questions added to the exclusion set since start",
	})
)

// OtherCategory is the label for categories outside model.Categories.
const OtherCategory = "other"

// CategoryLabel keeps the category label set bounded to the known
// categories. Anything else is counted under OtherCategory.
func CategoryLabel(category string) string {
	for _, c := range model.Categories {
		if string(c) == category {
			return category
		}
	}
	return OtherCategory
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
