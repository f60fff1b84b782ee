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
	"strings"

	"github.com/blnkfinance/stagetrack/internal/apierror"
	"github.com/blnkfinance/stagetrack/model"
)

func (t *Tracker) GetBarcodeHistory(ctx context.Context, barcode string) (*model.BarcodeHistory, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "barcode is required", nil)
	}

	state, err := t.datasource.GetBarcodeState(ctx, barcode)
	if err != nil {
		return nil, err
	}

	events, err := t.datasource.GetEventsByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}

	return &model.BarcodeHistory{State: *state, Events: events}, nil
}
