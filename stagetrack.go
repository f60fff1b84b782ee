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
	"embed"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/blnkfinance/stagetrack/config"
	"github.com/blnkfinance/stagetrack/database"
	"github.com/blnkfinance/stagetrack/internal/cache"
	"github.com/blnkfinance/stagetrack/internal/notification"
	redis_db "github.com/blnkfinance/stagetrack/internal/redis-db"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

var tracer = otel.Tracer("stagetrack")

// Tracker is the stage progression engine. It owns no mutable state of its own;
// everything shared lives in the data source or in Redis.
type Tracker struct {
	datasource database.IDataSource
	config     *config.Configuration
	redis      redis.UniversalClient
	cache      cache.Cache
	notifier   *notification.Notifier
	location   *time.Location
}

// NewTracker builds a Tracker over db. Redis is connected only when configured.
func NewTracker(db database.IDataSource, cnf *config.Configuration) (*Tracker, error) {
	tracker := &Tracker{
		datasource: db,
		config:     cnf,
		notifier:   notification.NewNotifier(cnf),
		location:   cnf.Location(),
	}

	if cnf.Redis.Dns != "" {
		redisClient, err := redis_db.NewRedisClient([]string{cnf.Redis.Dns}, cnf.Redis.SkipTLSVerify)
		if err != nil {
			return nil, err
		}
		tracker.useRedis(redisClient.Client())
	}
	return tracker, nil
}

func (t *Tracker) useRedis(client redis.UniversalClient) {
	t.redis = client
	t.cache = cache.NewCache(client)
}

// Location is the reference zone for naive event times and analytics days.
func (t *Tracker) Location() *time.Location {
	return t.location
}

func (t *Tracker) Close() error {
	if t.redis != nil {
		return t.redis.Close()
	}
	return nil
}
