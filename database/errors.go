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
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"

	"github.com/blnkfinance/stagetrack/internal/apierror"
)

// storageError maps a driver error to the API error taxonomy. Failures that go away on
// their own (lost connections, lock and serialization conflicts, timeouts) are transient.
func storageError(err error, message string) error {
	if isTransient(err) {
		return apierror.NewAPIError(apierror.ErrTransientStorage, message, err)
	}
	return apierror.NewAPIError(apierror.ErrInternalServer, message, err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", // connection_exception
			"40", // transaction_rollback: serialization_failure, deadlock_detected
			"53", // insufficient_resources
			"57": // operator_intervention: query_canceled, admin_shutdown
			return true
		}
		return pqErr.Code == "55P03" // lock_not_available
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}
