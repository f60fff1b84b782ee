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

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/blnkfinance/stagetrack/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Stage methods

func (m *MockDataSource) GetStageByName(ctx context.Context, name string) (*model.Stage, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stage), args.Error(1)
}

func (m *MockDataSource) GetAllStages(ctx context.Context) ([]model.Stage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Stage), args.Error(1)
}

func (m *MockDataSource) UpsertStages(ctx context.Context, stages []model.Stage) error {
	args := m.Called(ctx, stages)
	return args.Error(0)
}

// Barcode methods

func (m *MockDataSource) ApplySighting(ctx context.Context, sighting model.Sighting) (model.Classification, error) {
	args := m.Called(ctx, sighting)
	return args.Get(0).(model.Classification), args.Error(1)
}

func (m *MockDataSource) GetBarcodeState(ctx context.Context, barcode string) (*model.BarcodeState, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BarcodeState), args.Error(1)
}

// Event methods

func (m *MockDataSource) GetEventsByBarcode(ctx context.Context, barcode string) ([]model.Event, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Event), args.Error(1)
}

func (m *MockDataSource) GetAnalytics(ctx context.Context, timezone string) ([]model.StageDailyCount, error) {
	args := m.Called(ctx, timezone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StageDailyCount), args.Error(1)
}
