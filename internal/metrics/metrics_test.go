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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/blnkfinance/stagetrack/model"
)

func TestObserveBatch(t *testing.T) {
	newBefore := testutil.ToFloat64(SightingsTotal.WithLabelValues("MetricsStage", "new"))
	okBefore := testutil.ToFloat64(IngestBatchesTotal.WithLabelValues("ok"))

	ObserveBatch("MetricsStage", model.IngestCounts{New: 2, Old: 1, Same: 3}, "ok", 25*time.Millisecond)

	assert.Equal(t, newBefore+2, testutil.ToFloat64(SightingsTotal.WithLabelValues("MetricsStage", "new")))
	assert.Equal(t, float64(1), testutil.ToFloat64(SightingsTotal.WithLabelValues("MetricsStage", "old")))
	assert.Equal(t, float64(3), testutil.ToFloat64(SightingsTotal.WithLabelValues("MetricsStage", "same")))
	assert.Equal(t, okBefore+1, testutil.ToFloat64(IngestBatchesTotal.WithLabelValues("ok")))
}

func TestObserveStageCache(t *testing.T) {
	hits := testutil.ToFloat64(StageCacheLookupsTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(StageCacheLookupsTotal.WithLabelValues("miss"))

	ObserveStageCache(true)
	ObserveStageCache(false)
	ObserveStageCache(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(StageCacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(StageCacheLookupsTotal.WithLabelValues("miss")))
}

func TestInstrument(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Instrument())
	router.GET("/stages", func(c *gin.Context) {
		c.JSON(http.StatusOK, []string{})
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/stages", http.MethodGet, "200"))
	unmatched := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404"))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stages", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/stages", http.MethodGet, "200")))
	assert.Equal(t, unmatched+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404")))
}
