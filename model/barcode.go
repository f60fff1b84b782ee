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

// BarcodeState is the single stage a barcode currently occupies.
type BarcodeState struct {
	Barcode      string    `json:"barcode"`
	Stage        string    `json:"stage"`
	CreatedAt    time.Time `json:"created_at"`
	LastUpdateAt time.Time `json:"last_updated_at"`
}

// Sighting is one reported observation of a barcode at a stage.
// ObservedAt is the caller-supplied event time and RecordedAt the wall clock time of processing.
type Sighting struct {
	Barcode    string
	Stage      Stage
	ObservedAt time.Time
	RecordedAt time.Time
}

// BarcodeHistory is a barcode's current state together with every event recorded for it.
type BarcodeHistory struct {
	State  BarcodeState `json:"state"`
	Events []Event      `json:"events"`
}
