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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT              = "5001"
	DEFAULT_TIMEZONE          = "America/Chicago"
	DEFAULT_STAGE_CACHE_TTL   = 600
	DEFAULT_LOCK_TTL_SECONDS  = 30
	DEFAULT_LOCK_WAIT_SECONDS = 5
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Port string `json:"port" envconfig:"STAGETRACK_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"STAGETRACK_DATA_SOURCE_DNS"`
}

// RedisConfig is optional. Without it stages are always read from the data source
// and per-barcode distributed locks are disabled.
type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"STAGETRACK_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"STAGETRACK_REDIS_SKIP_TLS_VERIFY"`
}

type IngestConfig struct {
	// Timezone naive event times are interpreted in. Also the zone analytics days are computed in.
	DefaultTimezone  string `json:"default_timezone" envconfig:"STAGETRACK_INGEST_DEFAULT_TIMEZONE"`
	MaxBatchSize     int    `json:"max_batch_size" envconfig:"STAGETRACK_INGEST_MAX_BATCH_SIZE"`
	StageCacheTTLSec int    `json:"stage_cache_ttl_sec" envconfig:"STAGETRACK_INGEST_STAGE_CACHE_TTL_SEC"`
	DistributedLock  bool   `json:"distributed_lock" envconfig:"STAGETRACK_INGEST_DISTRIBUTED_LOCK"`
	LockTTLSeconds   int    `json:"lock_ttl_seconds" envconfig:"STAGETRACK_INGEST_LOCK_TTL_SECONDS"`
	LockWaitSeconds  int    `json:"lock_wait_seconds" envconfig:"STAGETRACK_INGEST_LOCK_WAIT_SECONDS"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"STAGETRACK_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"STAGETRACK_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"STAGETRACK_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url" envconfig:"STAGETRACK_SLACK_WEBHOOK_URL"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type TelemetryConfig struct {
	Enabled     bool   `json:"enabled" envconfig:"STAGETRACK_TELEMETRY_ENABLED"`
	Endpoint    string `json:"endpoint" envconfig:"STAGETRACK_TELEMETRY_ENDPOINT"`
	Headers     string `json:"headers" envconfig:"STAGETRACK_TELEMETRY_HEADERS"`
	ServiceName string `json:"service_name" envconfig:"STAGETRACK_TELEMETRY_SERVICE_NAME"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"STAGETRACK_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Ingest       IngestConfig     `json:"ingest"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
	Notification Notification     `json:"notification"`
	Telemetry    TelemetryConfig  `json:"telemetry"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("stagetrack", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called stagetrack.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Stagetrack Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Ingest.DefaultTimezone = strings.TrimSpace(cnf.Ingest.DefaultTimezone)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Ingest.DefaultTimezone == "" {
		cnf.Ingest.DefaultTimezone = DEFAULT_TIMEZONE
	}
	// "Local" loads in Go but Postgres cannot resolve it for AT TIME ZONE.
	if strings.EqualFold(cnf.Ingest.DefaultTimezone, "Local") {
		return errors.New("ingest default timezone must name an IANA zone, got: " + cnf.Ingest.DefaultTimezone)
	}
	if _, err := time.LoadLocation(cnf.Ingest.DefaultTimezone); err != nil {
		return errors.New("ingest default timezone is not a valid IANA zone: " + cnf.Ingest.DefaultTimezone)
	}

	// 0 leaves batches unbounded.
	if cnf.Ingest.MaxBatchSize < 0 {
		cnf.Ingest.MaxBatchSize = 0
	}
	if cnf.Ingest.StageCacheTTLSec <= 0 {
		cnf.Ingest.StageCacheTTLSec = DEFAULT_STAGE_CACHE_TTL
	}
	if cnf.Ingest.LockTTLSeconds <= 0 {
		cnf.Ingest.LockTTLSeconds = DEFAULT_LOCK_TTL_SECONDS
	}
	if cnf.Ingest.LockWaitSeconds <= 0 {
		cnf.Ingest.LockWaitSeconds = DEFAULT_LOCK_WAIT_SECONDS
	}

	if cnf.Ingest.DistributedLock && cnf.Redis.Dns == "" {
		log.Println("Error: distributed lock enabled without a redis DNS.")
		return errors.New("redis DNS is required when distributed lock is enabled")
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	if cnf.Telemetry.ServiceName == "" {
		cnf.Telemetry.ServiceName = "stagetrack"
	}

	return nil
}

// Location returns the zone naive event times are interpreted in.
func (cnf *Configuration) Location() *time.Location {
	loc, err := time.LoadLocation(cnf.Ingest.DefaultTimezone)
	if err != nil || cnf.Ingest.DefaultTimezone == "" {
		loc, err = time.LoadLocation(DEFAULT_TIMEZONE)
		if err != nil {
			return time.UTC
		}
	}
	return loc
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
