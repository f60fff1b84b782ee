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
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/stagetrack/config"

	_ "github.com/lib/pq" // Import the postgres driver
)

// connectMaxElapsed bounds how long startup waits for Postgres to accept connections.
const connectMaxElapsed = 30 * time.Second

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (*Datasource, error) {
	con, err := ConnectDB(configuration.DataSource.Dns)
	if err != nil {
		return nil, err
	}
	return &Datasource{Conn: con}, nil
}

// ConnectDB opens a pooled Postgres connection and waits, with exponential backoff,
// until the server answers a ping.
func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = connectMaxElapsed
	if err := pingWithRetry(db, b); err != nil {
		logrus.Errorf("database Connection error ❌: %v", err)
		_ = db.Close()
		return nil, err
	}

	logrus.Info("Database connection established ✅")
	return db, nil
}

func pingWithRetry(db *sql.DB, b backoff.BackOff) error {
	return backoff.RetryNotify(db.Ping, b, func(err error, next time.Duration) {
		logrus.Warnf("database not reachable, retrying in %s: %v", next, err)
	})
}

// Close releases the connection pool.
func (d Datasource) Close() error {
	return d.Conn.Close()
}
