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

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/blnkfinance/stagetrack"
	"github.com/blnkfinance/stagetrack/api/middleware"
	"github.com/blnkfinance/stagetrack/config"
	"github.com/blnkfinance/stagetrack/internal/apierror"
	"github.com/blnkfinance/stagetrack/internal/metrics"
)

type Api struct {
	tracker *stagetrack.Tracker
	router  *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/ingest", a.Ingest)
	router.GET("/stages", a.GetAllStages)
	router.GET("/analytics", a.GetAnalytics)
	router.GET("/barcodes/:barcode", a.GetBarcode)
	router.GET("/health", a.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return a.router
}

func NewAPI(tracker *stagetrack.Tracker, conf *config.Configuration) *Api {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	r.Use(otelgin.Middleware(conf.Telemetry.ServiceName))
	r.Use(metrics.Instrument())
	r.Use(middleware.RateLimitMiddleware(conf))

	return &Api{tracker: tracker, router: r}
}

func (a Api) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// respondWithError writes the error payload shared by every endpoint.
func respondWithError(c *gin.Context, err error) {
	status := apierror.MapErrorToHTTPStatus(err)
	apiErr, ok := apierror.As(err)
	if !ok {
		apiErr = apierror.APIError{Code: apierror.ErrInternalServer, Message: "An unexpected error occurred", Details: err}
	}

	c.JSON(status, gin.H{
		"status": status,
		"code":   apiErr.Code,
		"detail": apiErr.Detail(),
	})
}
