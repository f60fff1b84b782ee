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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/blnkfinance/stagetrack/internal/apierror"
	redlock "github.com/blnkfinance/stagetrack/internal/lock"
	"github.com/blnkfinance/stagetrack/internal/metrics"
	"github.com/blnkfinance/stagetrack/model"
)

const barcodeLockPrefix = "barcode:"

// validateIngest checks the request before anything touches storage and returns the normalized barcodes.
func (t *Tracker) validateIngest(req model.IngestRequest) ([]string, error) {
	if strings.TrimSpace(req.StageName) == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "stage_name is required", nil)
	}
	if req.EventTime.IsZero() {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "event_time is required", nil)
	}

	barcodes := model.NormalizeBarcodes(req.Barcodes)
	if len(barcodes) == 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "barcodes must contain at least one non-empty value", nil)
	}
	if limit := t.config.Ingest.MaxBatchSize; limit > 0 && len(barcodes) > limit {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput,
			fmt.Sprintf("batch of %d barcodes exceeds the limit of %d", len(barcodes), limit), nil)
	}
	return barcodes, nil
}

// Ingest applies one batch. The stage is resolved once, then every barcode occurrence is
// classified and applied in order as its own atomic unit. A storage error stops the batch;
// barcodes applied before it stay applied, and resubmitting the batch converges to the same state.
func (t *Tracker) Ingest(ctx context.Context, req model.IngestRequest) (*model.IngestResult, error) {
	ctx, span := tracer.Start(ctx, "Ingesting barcodes")
	defer span.End()

	barcodes, err := t.validateIngest(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	stage, err := t.ResolveStage(ctx, req.StageName)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("stage", stage.StageName),
		attribute.Int("position", stage.Position),
		attribute.Int("barcodes", len(barcodes)),
	)

	start := time.Now()
	counts := model.IngestCounts{}
	for _, barcode := range barcodes {
		cls, err := t.applySighting(ctx, model.Sighting{
			Barcode:    barcode,
			Stage:      *stage,
			ObservedAt: req.EventTime,
			RecordedAt: time.Now().In(t.location),
		})
		if err != nil {
			span.RecordError(err)
			t.failBatch(stage, barcode, counts, err, time.Since(start))
			return nil, err
		}

		if cls == model.ClassificationNoop {
			logrus.Infof("barcode %s already at or past stage '%s'", barcode, stage.StageName)
		}
		counts.Add(cls)
	}

	elapsed := time.Since(start)
	metrics.ObserveBatch(stage.StageName, counts, "ok", elapsed)
	logrus.WithFields(logrus.Fields{
		"stage":    stage.StageName,
		"position": stage.Position,
		"new":      counts.New,
		"old":      counts.Old,
		"same":     counts.Same,
		"duration": elapsed.String(),
	}).Info("ingest batch processed")

	return &model.IngestResult{
		Stage:    stage.StageName,
		Position: stage.Position,
		Counts:   counts,
		Message:  model.IngestFinishedMessage,
	}, nil
}

func (t *Tracker) failBatch(stage *model.Stage, barcode string, counts model.IngestCounts, err error, elapsed time.Duration) {
	outcome := string(apierror.ErrInternalServer)
	if apiErr, ok := apierror.As(err); ok {
		outcome = string(apiErr.Code)
	}
	metrics.ObserveBatch(stage.StageName, counts, outcome, elapsed)

	logrus.WithFields(logrus.Fields{
		"stage":     stage.StageName,
		"barcode":   barcode,
		"applied":   counts.Total(),
		"outcome":   outcome,
		"retryable": apierror.IsRetryable(err),
	}).Errorf("ingest batch aborted: %v", err)

	if outcome == string(apierror.ErrInternalServer) {
		t.notifier.NotifyError(fmt.Errorf("ingest at stage %s aborted on barcode %s: %w", stage.StageName, barcode, err))
	}
}

// applySighting runs one barcode through the data source, holding the barcode's Redis lock
// when distributed locking is enabled.
func (t *Tracker) applySighting(ctx context.Context, sighting model.Sighting) (model.Classification, error) {
	if !t.config.Ingest.DistributedLock || t.redis == nil {
		return t.datasource.ApplySighting(ctx, sighting)
	}

	locker, err := t.acquireLock(ctx, sighting.Barcode)
	if err != nil {
		return "", err
	}
	defer func(locker *redlock.Locker) {
		if err := locker.Unlock(context.WithoutCancel(ctx)); err != nil {
			logrus.Error("lock error ", err)
		}
	}(locker)

	return t.datasource.ApplySighting(ctx, sighting)
}

func (t *Tracker) acquireLock(ctx context.Context, barcode string) (*redlock.Locker, error) {
	locker := redlock.NewLocker(t.redis, barcodeLockPrefix+barcode, model.GenerateUUIDWithSuffix("loc"))
	ttl := time.Duration(t.config.Ingest.LockTTLSeconds) * time.Second
	wait := time.Duration(t.config.Ingest.LockWaitSeconds) * time.Second

	if err := locker.WaitLock(ctx, ttl, wait); err != nil {
		message := fmt.Sprintf("Failed to lock barcode '%s'", barcode)
		if errors.Is(err, redlock.ErrNotAcquired) {
			message = fmt.Sprintf("Barcode '%s' is locked by another writer", barcode)
		}
		return nil, apierror.NewAPIError(apierror.ErrTransientStorage, message, err)
	}
	return locker, nil
}
