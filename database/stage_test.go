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
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/stagetrack/internal/apierror"
	"github.com/blnkfinance/stagetrack/model"
)

func newTestDatasource(t *testing.T) (Datasource, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return Datasource{Conn: db}, mock
}

func TestGetStageByName_Success(t *testing.T) {
	ds, mock := newTestDatasource(t)

	rows := sqlmock.NewRows([]string{"stage_name", "position"}).AddRow("Packing", 1)
	mock.ExpectQuery("SELECT stage_name, position FROM stages WHERE stage_name = \\$1").
		WithArgs("Packing").
		WillReturnRows(rows)

	stage, err := ds.GetStageByName(context.Background(), "Packing")
	require.NoError(t, err)
	assert.Equal(t, &model.Stage{StageName: "Packing", Position: 1}, stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStageByName_NotFound(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery("SELECT stage_name, position FROM stages").
		WithArgs("Unknown").
		WillReturnRows(sqlmock.NewRows([]string{"stage_name", "position"}))

	_, err := ds.GetStageByName(context.Background(), "Unknown")
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
	assert.Equal(t, "Stage 'Unknown' not found", apiErr.Message)
}

func TestGetStageByName_ConnectionLost(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery("SELECT stage_name, position FROM stages").
		WithArgs("Packing").
		WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	_, err := ds.GetStageByName(context.Background(), "Packing")
	assert.True(t, apierror.IsRetryable(err))
}

func TestGetAllStages(t *testing.T) {
	ds, mock := newTestDatasource(t)

	rows := sqlmock.NewRows([]string{"stage_name", "position"}).
		AddRow("Receiving", 0).
		AddRow("Packing", 1).
		AddRow("Shipped", 2)
	mock.ExpectQuery("SELECT stage_name, position FROM stages ORDER BY position").
		WillReturnRows(rows)

	stages, err := ds.GetAllStages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Stage{
		{StageName: "Receiving", Position: 0},
		{StageName: "Packing", Position: 1},
		{StageName: "Shipped", Position: 2},
	}, stages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllStages_Empty(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery("SELECT stage_name, position FROM stages").
		WillReturnRows(sqlmock.NewRows([]string{"stage_name", "position"}))

	stages, err := ds.GetAllStages(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, stages)
	assert.Empty(t, stages)
}

func TestUpsertStages_Success(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO stages").WithArgs("Receiving", 0).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO stages").WithArgs("Packing", 1).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := ds.UpsertStages(context.Background(), []model.Stage{
		{StageName: "Receiving", Position: 0},
		{StageName: "Packing", Position: 1},
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertStages_PositionTaken(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO stages").
		WithArgs("Packing", 0).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := ds.UpsertStages(context.Background(), []model.Stage{{StageName: "Packing", Position: 0}})
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertStages_PositionCollisionAtCommit(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO stages").WithArgs("Packing", 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint \"stages_position_key\""})

	err := ds.UpsertStages(context.Background(), []model.Stage{{StageName: "Packing", Position: 0}})
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
}
