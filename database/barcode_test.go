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
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/stagetrack/internal/apierror"
	"github.com/blnkfinance/stagetrack/model"
)

const (
	lockBarcodeQuery  = "SELECT s.position FROM barcodes b JOIN stages s"
	insertBarcodeSQL  = "INSERT INTO barcodes"
	advanceBarcodeSQL = "UPDATE barcodes SET stage"
	insertEventSQL    = "INSERT INTO events"
)

func testSighting(stage string, position int) model.Sighting {
	return model.Sighting{
		Barcode:    "PKG-001",
		Stage:      model.Stage{StageName: stage, Position: position},
		ObservedAt: time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC),
		RecordedAt: time.Date(2024, 3, 1, 8, 30, 5, 0, time.UTC),
	}
}

func TestApplySighting_New(t *testing.T) {
	ds, mock := newTestDatasource(t)
	s := testSighting("Packing", 1)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBarcodeQuery).WithArgs(s.Barcode).WillReturnRows(sqlmock.NewRows([]string{"position"}))
	mock.ExpectExec(insertBarcodeSQL).WithArgs(s.Barcode, "Packing", s.RecordedAt).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insertEventSQL).WithArgs(s.Barcode, "Packing", s.ObservedAt).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	cls, err := ds.ApplySighting(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, model.ClassificationNew, cls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySighting_Advance(t *testing.T) {
	ds, mock := newTestDatasource(t)
	s := testSighting("Shipped", 2)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBarcodeQuery).WithArgs(s.Barcode).WillReturnRows(sqlmock.NewRows([]string{"position"}).AddRow(1))
	mock.ExpectExec(advanceBarcodeSQL).WithArgs(s.Barcode, "Shipped", s.RecordedAt, 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertEventSQL).WithArgs(s.Barcode, "Shipped", s.ObservedAt).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	cls, err := ds.ApplySighting(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, model.ClassificationAdvance, cls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySighting_NoopStillRecordsEvent(t *testing.T) {
	ds, mock := newTestDatasource(t)
	s := testSighting("Receiving", 0)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBarcodeQuery).WithArgs(s.Barcode).WillReturnRows(sqlmock.NewRows([]string{"position"}).AddRow(2))
	mock.ExpectExec(insertEventSQL).WithArgs(s.Barcode, "Receiving", s.ObservedAt).WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	cls, err := ds.ApplySighting(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, model.ClassificationNoop, cls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySighting_SamePositionIsNoop(t *testing.T) {
	ds, mock := newTestDatasource(t)
	s := testSighting("Packing", 1)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBarcodeQuery).WithArgs(s.Barcode).WillReturnRows(sqlmock.NewRows([]string{"position"}).AddRow(1))
	mock.ExpectExec(insertEventSQL).WithArgs(s.Barcode, "Packing", s.ObservedAt).WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	cls, err := ds.ApplySighting(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, model.ClassificationNoop, cls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySighting_LostInsertRaceReclassifies(t *testing.T) {
	ds, mock := newTestDatasource(t)
	s := testSighting("Shipped", 2)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBarcodeQuery).WithArgs(s.Barcode).WillReturnRows(sqlmock.NewRows([]string{"position"}))
	mock.ExpectExec(insertBarcodeSQL).WithArgs(s.Barcode, "Shipped", s.RecordedAt).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(lockBarcodeQuery).WithArgs(s.Barcode).WillReturnRows(sqlmock.NewRows([]string{"position"}).AddRow(0))
	mock.ExpectExec(advanceBarcodeSQL).WithArgs(s.Barcode, "Shipped", s.RecordedAt, 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertEventSQL).WithArgs(s.Barcode, "Shipped", s.ObservedAt).WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	cls, err := ds.ApplySighting(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, model.ClassificationAdvance, cls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySighting_ConditionalUpdateMissIsNoop(t *testing.T) {
	ds, mock := newTestDatasource(t)
	s := testSighting("Shipped", 2)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBarcodeQuery).WithArgs(s.Barcode).WillReturnRows(sqlmock.NewRows([]string{"position"}).AddRow(1))
	mock.ExpectExec(advanceBarcodeSQL).WithArgs(s.Barcode, "Shipped", s.RecordedAt, 2).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(insertEventSQL).WithArgs(s.Barcode, "Shipped", s.ObservedAt).WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	cls, err := ds.ApplySighting(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, model.ClassificationNoop, cls)
}

func TestApplySighting_EventInsertFailureRollsBack(t *testing.T) {
	ds, mock := newTestDatasource(t)
	s := testSighting("Packing", 1)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBarcodeQuery).WithArgs(s.Barcode).WillReturnRows(sqlmock.NewRows([]string{"position"}))
	mock.ExpectExec(insertBarcodeSQL).WithArgs(s.Barcode, "Packing", s.RecordedAt).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insertEventSQL).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := ds.ApplySighting(context.Background(), s)
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrInternalServer, apiErr.Code)
	assert.Contains(t, apiErr.Detail(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySighting_LockTimeoutIsTransient(t *testing.T) {
	ds, mock := newTestDatasource(t)
	s := testSighting("Packing", 1)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBarcodeQuery).WithArgs(s.Barcode).
		WillReturnError(&pq.Error{Code: "55P03", Message: "could not obtain lock on row"})
	mock.ExpectRollback()

	_, err := ds.ApplySighting(context.Background(), s)
	assert.True(t, apierror.IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySighting_BeginFails(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectBegin().WillReturnError(&pq.Error{Code: "08006"})

	_, err := ds.ApplySighting(context.Background(), testSighting("Packing", 1))
	assert.True(t, apierror.IsRetryable(err))
}

func TestGetBarcodeState(t *testing.T) {
	ds, mock := newTestDatasource(t)
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	updated := created.Add(2 * time.Hour)

	rows := sqlmock.NewRows([]string{"barcode", "stage", "created_at", "last_updated_at"}).
		AddRow("PKG-001", "Shipped", created, updated)
	mock.ExpectQuery("SELECT barcode, stage, created_at, last_updated_at FROM barcodes").
		WithArgs("PKG-001").
		WillReturnRows(rows)

	state, err := ds.GetBarcodeState(context.Background(), "PKG-001")
	require.NoError(t, err)
	assert.Equal(t, "Shipped", state.Stage)
	assert.Equal(t, created, state.CreatedAt)
	assert.Equal(t, updated, state.LastUpdateAt)
}

func TestGetBarcodeState_NotFound(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery("SELECT barcode, stage, created_at, last_updated_at FROM barcodes").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"barcode", "stage", "created_at", "last_updated_at"}))

	_, err := ds.GetBarcodeState(context.Background(), "missing")
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}
