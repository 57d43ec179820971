package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	challengeCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trophy_challenge_completions_total",
		Help: "Challenge completion attempts by result.",
	}, []string{"result"})

	titlePurchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trophy_title_purchases_total",
		Help: "Title purchase attempts by result.",
	}, []string{"result"})

	trophyToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trophy_toggles_total",
		Help: "Trophy completion state changes by action.",
	}, []string{"action"})

	catalogReseeds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trophy_catalog_reseeds_total",
		Help: "Catalog reseed runs by result.",
	}, []string{"result"})

	rankingBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trophy_ranking_build_seconds",
		Help:    "Time spent building the leaderboard.",
		Buckets: prometheus.DefBuckets,
	})
)

// resultLabel maps an outcome to a bounded label value.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return KindOf(err).String()
}
