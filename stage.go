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
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/stagetrack/internal/apierror"
	"github.com/blnkfinance/stagetrack/internal/cache"
	"github.com/blnkfinance/stagetrack/internal/metrics"
	"github.com/blnkfinance/stagetrack/model"
)

const stageCachePrefix = "stage:"

func stageCacheKey(name string) string {
	return stageCachePrefix + name
}

func (t *Tracker) stageCacheTTL() time.Duration {
	return time.Duration(t.config.Ingest.StageCacheTTLSec) * time.Second
}

// ResolveStage returns the named stage, reading through the stage cache when Redis is configured.
// Unknown stages are never cached.
func (t *Tracker) ResolveStage(ctx context.Context, name string) (*model.Stage, error) {
	ctx, span := tracer.Start(ctx, "Resolving stage")
	defer span.End()

	if t.cache != nil {
		var cached model.Stage
		err := t.cache.Get(ctx, stageCacheKey(name), &cached)
		if err == nil {
			metrics.ObserveStageCache(true)
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logrus.Warnf("stage cache read failed for %s: %v", name, err)
		}
		metrics.ObserveStageCache(false)
	}

	stage, err := t.datasource.GetStageByName(ctx, name)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, stageCacheKey(name), stage, t.stageCacheTTL()); err != nil {
			logrus.Warnf("stage cache write failed for %s: %v", name, err)
		}
	}
	return stage, nil
}

func (t *Tracker) GetAllStages(ctx context.Context) ([]model.Stage, error) {
	return t.datasource.GetAllStages(ctx)
}

func validateStage(stage model.Stage) error {
	return validation.ValidateStruct(&stage,
		validation.Field(&stage.StageName, validation.Required, validation.Length(1, 100)),
		validation.Field(&stage.Position, validation.Min(0)),
	)
}

func validateCatalog(stages []model.Stage) error {
	if len(stages) == 0 {
		return apierror.NewAPIError(apierror.ErrInvalidInput, "stage catalog is empty", nil)
	}

	names := make(map[string]struct{}, len(stages))
	positions := make(map[int]string, len(stages))
	for i, stage := range stages {
		if err := validateStage(stage); err != nil {
			return apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("stage #%d: %v", i+1, err), nil)
		}
		if _, ok := names[stage.StageName]; ok {
			return apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("stage '%s' is listed more than once", stage.StageName), nil)
		}
		if other, ok := positions[stage.Position]; ok {
			return apierror.NewAPIError(apierror.ErrInvalidInput,
				fmt.Sprintf("stages '%s' and '%s' share position %d", other, stage.StageName, stage.Position), nil)
		}
		names[stage.StageName] = struct{}{}
		positions[stage.Position] = stage.StageName
	}
	return nil
}

// LoadStages provisions the catalog. It is meant to run while no ingest traffic is being served,
// since the engine treats stage positions as immutable.
func (t *Tracker) LoadStages(ctx context.Context, stages []model.Stage) error {
	ctx, span := tracer.Start(ctx, "Loading stages")
	defer span.End()

	if err := validateCatalog(stages); err != nil {
		return err
	}

	if err := t.datasource.UpsertStages(ctx, stages); err != nil {
		span.RecordError(err)
		return err
	}

	if t.cache != nil {
		for _, stage := range stages {
			if err := t.cache.Delete(ctx, stageCacheKey(stage.StageName)); err != nil {
				logrus.Warnf("failed to evict cached stage %s: %v", stage.StageName, err)
			}
		}
	}

	logrus.Infof("loaded %d stages", len(stages))
	return nil
}
