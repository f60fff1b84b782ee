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

package model

import "time"

// Event is an append-only record of a reported sighting. Stage is the stage as reported,
// which may differ from the barcode's current stage when a stale reading is processed.
type Event struct {
	Barcode   string    `json:"barcode"`
	Stage     string    `json:"stage"`
	EventTime time.Time `json:"event_time"`
}

// StageDailyCount is the number of distinct barcodes reported at a stage on a calendar day.
type StageDailyCount struct {
	EventDate string `json:"event_date"`
	Stage     string `json:"stage"`
	Count     int64  `json:"count"`
}
