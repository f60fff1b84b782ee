/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blnkfinance/stagetrack/model"
)

var (
	SightingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stagetrack_sightings_total",
			Help: "Barcode sightings processed, by reported stage and classification",
		},
		[]string{"stage", "classification"},
	)

	IngestBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stagetrack_ingest_batches_total",
			Help: "Ingest batches, by outcome code",
		},
		[]string{"outcome"},
	)

	IngestBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stagetrack_ingest_batch_duration_seconds",
			Help:    "Time spent applying one ingest batch",
			Buckets: prometheus.DefBuckets,
		},
	)

	StageCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stagetrack_stage_cache_lookups_total",
			Help: "Stage cache lookups, by result",
		},
		[]string{"result"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stagetrack_http_requests_total",
			Help: "HTTP requests, by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stagetrack_http_request_duration_seconds",
			Help:    "HTTP request duration, by route and method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

func init() {
	prometheus.MustRegister(SightingsTotal)
	prometheus.MustRegister(IngestBatchesTotal)
	prometheus.MustRegister(IngestBatchDuration)
	prometheus.MustRegister(StageCacheLookupsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}

// ObserveBatch records the counts and latency of a finished batch. outcome is "ok" or an error code.
func ObserveBatch(stage string, counts model.IngestCounts, outcome string, elapsed time.Duration) {
	SightingsTotal.WithLabelValues(stage, string(model.ClassificationNew)).Add(float64(counts.New))
	SightingsTotal.WithLabelValues(stage, string(model.ClassificationAdvance)).Add(float64(counts.Old))
	SightingsTotal.WithLabelValues(stage, string(model.ClassificationNoop)).Add(float64(counts.Same))
	IngestBatchesTotal.WithLabelValues(outcome).Inc()
	IngestBatchDuration.Observe(elapsed.Seconds())
}

func ObserveStageCache(hit bool) {
	if hit {
		StageCacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	StageCacheLookupsTotal.WithLabelValues("miss").Inc()
}

// Instrument records request count and duration per matched route.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(startTime).Seconds())
		HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
