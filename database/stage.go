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

	"github.com/blnkfinance/stagetrack/internal/apierror"
	"github.com/blnkfinance/stagetrack/model"
)

func (d Datasource) GetStageByName(ctx context.Context, name string) (*model.Stage, error) {
	ctx, span := otel.Tracer("stagetrack.database").Start(ctx, "GetStageByName")
	defer span.End()

	stage := model.Stage{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT stage_name, position
		FROM stages
		WHERE stage_name = $1
	`, name).Scan(&stage.StageName, &stage.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Stage '%s' not found", name), nil)
		}
		return nil, storageError(err, "Failed to retrieve stage")
	}

	return &stage, nil
}

func (d Datasource) GetAllStages(ctx context.Context) ([]model.Stage, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT stage_name, position
		FROM stages
		ORDER BY position
	`)
	if err != nil {
		return nil, storageError(err, "Failed to retrieve stages")
	}
	defer rows.Close()

	stages := []model.Stage{}
	for rows.Next() {
		stage := model.Stage{}
		if err := rows.Scan(&stage.StageName, &stage.Position); err != nil {
			return nil, storageError(err, "Failed to scan stage data")
		}
		stages = append(stages, stage)
	}

	if err = rows.Err(); err != nil {
		return nil, storageError(err, "Error occurred while iterating over stages")
	}

	return stages, nil
}

// UpsertStages provisions the catalog in one transaction. Existing stages keep their name
// and take the new position.
func (d Datasource) UpsertStages(ctx context.Context, stages []model.Stage) error {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return storageError(err, "Failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, stage := range stages {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO stages (stage_name, position)
			VALUES ($1, $2)
			ON CONFLICT (stage_name) DO UPDATE SET position = EXCLUDED.position
		`, stage.StageName, stage.Position)
		if err != nil {
			if isUniqueViolation(err) {
				return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Position %d is already taken by another stage", stage.Position), err)
			}
			return storageError(err, "Failed to save stage")
		}
	}

	// position uniqueness is checked at commit so stages can swap positions
	if err = tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return apierror.NewAPIError(apierror.ErrConflict, "Two stages would share a position", err)
		}
		return storageError(err, "Failed to commit transaction")
	}
	return nil
}
