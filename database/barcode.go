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
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/blnkfinance/stagetrack/internal/apierror"
	"github.com/blnkfinance/stagetrack/model"
)

// ApplySighting runs the whole classify-and-write sequence for one barcode in a single
// transaction. The barcode row is locked while it is classified, a first sighting that
// loses an insert race is re-read and re-classified, and the advance is a conditional
// update, so concurrent batches cannot move a barcode backwards.
func (d Datasource) ApplySighting(ctx context.Context, s model.Sighting) (model.Classification, error) {
	ctx, span := otel.Tracer("stagetrack.database").Start(ctx, "ApplySighting")
	defer span.End()
	span.SetAttributes(attribute.String("barcode", s.Barcode), attribute.String("stage", s.Stage.StageName))

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return "", storageError(err, "Failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := lockBarcodePosition(ctx, tx, s.Barcode)
	if err != nil {
		return "", err
	}

	classification := model.Classify(existing, s.Stage.Position)
	if classification == model.ClassificationNew {
		inserted, err := insertBarcode(ctx, tx, s)
		if err != nil {
			return "", err
		}
		if !inserted {
			existing, err = lockBarcodePosition(ctx, tx, s.Barcode)
			if err != nil {
				return "", err
			}
			if existing == nil {
				return "", apierror.NewAPIError(apierror.ErrTransientStorage, fmt.Sprintf("Barcode '%s' changed concurrently", s.Barcode), nil)
			}
			classification = model.Classify(existing, s.Stage.Position)
		}
	}

	if classification == model.ClassificationAdvance {
		advanced, err := advanceBarcode(ctx, tx, s)
		if err != nil {
			return "", err
		}
		if !advanced {
			classification = model.ClassificationNoop
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (barcode, stage, event_time)
		VALUES ($1, $2, $3)
	`, s.Barcode, s.Stage.StageName, s.ObservedAt)
	if err != nil {
		return "", storageError(err, "Failed to record event")
	}

	if err = tx.Commit(); err != nil {
		return "", storageError(err, "Failed to commit transaction")
	}

	span.SetAttributes(attribute.String("classification", string(classification)))
	return classification, nil
}

// lockBarcodePosition returns the position of the barcode's current stage and holds the
// row lock until the transaction ends. It returns nil for a barcode with no state.
func lockBarcodePosition(ctx context.Context, tx *sql.Tx, barcode string) (*int, error) {
	var position int
	err := tx.QueryRowContext(ctx, `
		SELECT s.position
		FROM barcodes b
		JOIN stages s ON s.stage_name = b.stage
		WHERE b.barcode = $1
		FOR UPDATE OF b
	`, barcode).Scan(&position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageError(err, "Failed to retrieve barcode state")
	}
	return &position, nil
}

func insertBarcode(ctx context.Context, tx *sql.Tx, s model.Sighting) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO barcodes (barcode, stage, created_at, last_updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (barcode) DO NOTHING
	`, s.Barcode, s.Stage.StageName, s.RecordedAt)
	if err != nil {
		return false, storageError(err, "Failed to create barcode")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, storageError(err, "Failed to create barcode")
	}
	return rows == 1, nil
}

// advanceBarcode moves the barcode to the sighting's stage only if its stored position is
// still behind the target.
func advanceBarcode(ctx context.Context, tx *sql.Tx, s model.Sighting) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE barcodes
		SET stage = $2, last_updated_at = $3
		WHERE barcode = $1
		AND (SELECT position FROM stages WHERE stage_name = barcodes.stage) < $4
	`, s.Barcode, s.Stage.StageName, s.RecordedAt, s.Stage.Position)
	if err != nil {
		return false, storageError(err, "Failed to advance barcode")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, storageError(err, "Failed to advance barcode")
	}
	return rows == 1, nil
}

func (d Datasource) GetBarcodeState(ctx context.Context, barcode string) (*model.BarcodeState, error) {
	state := model.BarcodeState{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT barcode, stage, created_at, last_updated_at
		FROM barcodes
		WHERE barcode = $1
	`, barcode).Scan(&state.Barcode, &state.Stage, &state.CreatedAt, &state.LastUpdateAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Barcode '%s' not found", barcode), nil)
		}
		return nil, storageError(err, "Failed to retrieve barcode")
	}
	return &state, nil
}
