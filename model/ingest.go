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

const IngestFinishedMessage = "Finished processing barcodes."

// IngestRequest is a batch of barcodes reported at one stage.
type IngestRequest struct {
	StageName string
	Barcodes  []string
	EventTime time.Time
}

// IngestCounts aggregates classifications of one batch.
type IngestCounts struct {
	New  int `json:"new"`
	Old  int `json:"old"`
	Same int `json:"same"`
}

// Add records one classification.
func (c *IngestCounts) Add(cls Classification) {
	switch cls {
	case ClassificationNew:
		c.New++
	case ClassificationAdvance:
		c.Old++
	case ClassificationNoop:
		c.Same++
	}
}

// Total returns the number of barcodes counted.
func (c IngestCounts) Total() int {
	return c.New + c.Old + c.Same
}

// IngestResult is returned for every successfully processed batch.
type IngestResult struct {
	Stage    string       `json:"stage"`
	Position int          `json:"position"`
	Counts   IngestCounts `json:"counts"`
	Message  string       `json:"message"`
}
