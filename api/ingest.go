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
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/blnkfinance/stagetrack/api/model"
	"github.com/blnkfinance/stagetrack/internal/apierror"
)

func (a Api) Ingest(c *gin.Context) {
	var body model2.IngestBarcodes
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		respondWithError(c, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid request body: "+err.Error(), nil))
		return
	}

	if err := body.ValidateIngestBarcodes(); err != nil {
		respondWithError(c, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil))
		return
	}

	req, err := body.ToIngestRequest(a.tracker.Location())
	if err != nil {
		respondWithError(c, apierror.NewAPIError(apierror.ErrInvalidInput, "event_time: "+err.Error(), nil))
		return
	}

	resp, err := a.tracker.Ingest(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
