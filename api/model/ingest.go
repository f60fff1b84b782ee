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

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/blnkfinance/stagetrack/model"
)

// IngestBarcodes is the body of POST /ingest.
type IngestBarcodes struct {
	StageName string   `json:"stage_name"`
	Barcodes  []string `json:"barcodes"`
	EventTime string   `json:"event_time"`
}

var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05-0700",
	"2006-01-02T15:04:05-07",
	"2006-01-02 15:04:05-07",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

var errEventTimeFormat = errors.New("must be an ISO-8601 timestamp")

// ParseEventTime parses an ISO-8601 timestamp. Values without zone information are
// interpreted in loc.
func ParseEventTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, "z") {
		value = strings.TrimSuffix(value, "z") + "Z"
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errEventTimeFormat
}

func (i *IngestBarcodes) ValidateIngestBarcodes() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.StageName, validation.Required),
		validation.Field(&i.Barcodes, validation.Required, validation.By(func(value interface{}) error {
			if len(model.NormalizeBarcodes(i.Barcodes)) == 0 {
				return errors.New("must contain at least one non-empty barcode")
			}
			return nil
		})),
		validation.Field(&i.EventTime, validation.Required, validation.By(func(value interface{}) error {
			_, err := ParseEventTime(i.EventTime, time.UTC)
			return err
		})),
	)
}

func (i *IngestBarcodes) ToIngestRequest(loc *time.Location) (model.IngestRequest, error) {
	eventTime, err := ParseEventTime(i.EventTime, loc)
	if err != nil {
		return model.IngestRequest{}, err
	}
	return model.IngestRequest{
		StageName: i.StageName,
		Barcodes:  model.NormalizeBarcodes(i.Barcodes),
		EventTime: eventTime,
	}, nil
}
