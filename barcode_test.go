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

package stagetrack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/stagetrack/database/mocks"
	"github.com/blnkfinance/stagetrack/internal/apierror"
	"github.com/blnkfinance/stagetrack/model"
)

func TestGetBarcodeHistory(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(receiving, packing, shipped)
	tracker := newTestTracker(t, store)
	t1 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	for i, stage := range []string{"Receiving", "Shipped", "Packing"} {
		_, err := tracker.Ingest(ctx, model.IngestRequest{StageName: stage, Barcodes: []string{"B1"}, EventTime: t1.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	history, err := tracker.GetBarcodeHistory(ctx, " B1 ")
	require.NoError(t, err)
	assert.Equal(t, "Shipped", history.State.Stage)
	require.Len(t, history.Events, 3)
	assert.Equal(t, "Packing", history.Events[2].Stage)
}

func TestGetBarcodeHistory_NotFound(t *testing.T) {
	tracker := newTestTracker(t, newMemStore(packing))

	_, err := tracker.GetBarcodeHistory(context.Background(), "missing")
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestGetBarcodeHistory_Blank(t *testing.T) {
	db := &mocks.MockDataSource{}
	tracker := newTestTracker(t, db)

	_, err := tracker.GetBarcodeHistory(context.Background(), "  ")
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)
	db.AssertNotCalled(t, "GetBarcodeState", mock.Anything, mock.Anything)
}

func TestGetBarcodeHistory_EventsError(t *testing.T) {
	db := &mocks.MockDataSource{}
	tracker := newTestTracker(t, db)
	failure := apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve events", errors.New("boom"))

	db.On("GetBarcodeState", mock.Anything, "B1").Return(&model.BarcodeState{Barcode: "B1", Stage: "Packing"}, nil)
	db.On("GetEventsByBarcode", mock.Anything, "B1").Return(nil, failure)

	_, err := tracker.GetBarcodeHistory(context.Background(), "B1")
	assert.ErrorIs(t, err, failure)
}
