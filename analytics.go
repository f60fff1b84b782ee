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

	"github.com/blnkfinance/stagetrack/model"
)

// GetAnalytics counts distinct barcodes per calendar day, in the reference zone, and reported stage.
func (t *Tracker) GetAnalytics(ctx context.Context) ([]model.StageDailyCount, error) {
	return t.datasource.GetAnalytics(ctx, t.location.String())
}
