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

package database

import (
	"context"

	"github.com/blnkfinance/stagetrack/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	stage   // Stage catalog reads and provisioning
	barcode // Barcode state transitions
	event   // Event log reads
}

type stage interface {
	GetStageByName(ctx context.Context, name string) (*model.Stage, error)
	GetAllStages(ctx context.Context) ([]model.Stage, error)
	UpsertStages(ctx context.Context, stages []model.Stage) error
}

type barcode interface {
	// ApplySighting classifies one sighting against the stored state, applies the resulting
	// transition and appends the event, atomically with respect to other writers of the same barcode.
	ApplySighting(ctx context.Context, sighting model.Sighting) (model.Classification, error)
	GetBarcodeState(ctx context.Context, barcode string) (*model.BarcodeState, error)
}

type event interface {
	GetEventsByBarcode(ctx context.Context, barcode string) ([]model.Event, error)
	// GetAnalytics counts distinct barcodes per calendar day (in timezone) and reported stage.
	GetAnalytics(ctx context.Context, timezone string) ([]model.StageDailyCount, error)
}
