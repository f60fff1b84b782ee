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

	"go.opentelemetry.io/otel"

	"github.com/blnkfinance/stagetrack/model"
)

func (d Datasource) GetEventsByBarcode(ctx context.Context, barcode string) ([]model.Event, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT barcode, stage, event_time
		FROM events
		WHERE barcode = $1
		ORDER BY event_time, id
	`, barcode)
	if err != nil {
		return nil, storageError(err, "Failed to retrieve events")
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		event := model.Event{}
		if err := rows.Scan(&event.Barcode, &event.Stage, &event.EventTime); err != nil {
			return nil, storageError(err, "Failed to scan event data")
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, storageError(err, "Error occurred while iterating over events")
	}
	return events, nil
}

// GetAnalytics groups the whole event log by calendar day and reported stage. A barcode
// reported several times at one stage on one day is counted once.
func (d Datasource) GetAnalytics(ctx context.Context, timezone string) ([]model.StageDailyCount, error) {
	ctx, span := otel.Tracer("stagetrack.database").Start(ctx, "GetAnalytics")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT to_char((event_time AT TIME ZONE $1)::date, 'YYYY-MM-DD') AS event_date,
			stage,
			COUNT(DISTINCT barcode) AS event_count
		FROM events
		GROUP BY 1, stage
		ORDER BY 1, stage
	`, timezone)
	if err != nil {
		return nil, storageError(err, "Failed to retrieve analytics")
	}
	defer rows.Close()

	results := []model.StageDailyCount{}
	for rows.Next() {
		row := model.StageDailyCount{}
		if err := rows.Scan(&row.EventDate, &row.Stage, &row.Count); err != nil {
			return nil, storageError(err, "Failed to scan analytics row")
		}
		results = append(results, row)
	}

	if err = rows.Err(); err != nil {
		return nil, storageError(err, "Error occurred while iterating over analytics")
	}
	return results, nil
}
