/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ConnectionError reports that a connection could not be resolved or opened.
// It is never retried; the wrapped driver error is reachable via Unwrap.
type ConnectionError struct {
	Descriptor string
	Err        error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("database: connect %q failed", e.Descriptor)
	}
	return fmt.Sprintf("database: connect %q failed: %v", e.Descriptor, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// NewConnectionError wraps err as a connection failure for a descriptor.
func NewConnectionError(descriptor string, err error) *ConnectionError {
	return &ConnectionError{Descriptor: descriptor, Err: err}
}

// ProcedureError reports that the database rejected a procedure call:
// unknown procedure, parameter mismatch, constraint violation, or any other
// runtime SQL error. The driver error is propagated unmodified via Unwrap
// and Kind carries a best-effort classification.
type ProcedureError struct {
	Procedure string
	Kind      SQLError
	Err       error
}

func (e *ProcedureError) Error() string {
	return fmt.Sprintf("database: procedure %q failed: %v", e.Procedure, e.Err)
}

func (e *ProcedureError) Unwrap() error { return e.Err }

// NewProcedureError wraps err as a procedure failure, classifying it.
func NewProcedureError(procedure string, err error) *ProcedureError {
	_, kind := IsSqlError(err)
	return &ProcedureError{Procedure: procedure, Kind: kind, Err: err}
}

type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoColumnErr
	NoTableErr
	NoProcedureErr
	ParamMismatchErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
)

// IsSqlError classifies a driver error. MySQL errors are matched by number;
// other engines fall back to SQLSTATE and message substrings.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1305:
			return true, NoProcedureErr
		case 1318:
			return true, ParamMismatchErr
		case 1054:
			return true, NoColumnErr
		case 1062:
			return true, DuplicateKeyErr
		case 1048:
			return true, NotNullViolationErr
		case 1216, 1217:
			return true, ForeignKeyViolationErr
		case 3819:
			return true, CheckConstraintViolationErr
		case 1265:
			return true, DataTruncatedErr
		case 1146:
			return true, NoTableErr
		default:
			return true, UnknownErr
		}
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "sqlstate 42883") ||
		strings.Contains(s, "does not exist") && (strings.Contains(s, "function") || strings.Contains(s, "procedure")) {
		return true, NoProcedureErr
	}
	if strings.Contains(s, "sqlstate 42703") ||
		strings.Contains(s, "undefined column") ||
		strings.Contains(s, "no such column") {
		return true, NoColumnErr
	}
	if strings.Contains(s, "sqlstate 42p01") ||
		strings.Contains(s, "undefined table") ||
		strings.Contains(s, "no such table") {
		return true, NoTableErr
	}
	if strings.Contains(s, "duplicate key value") ||
		strings.Contains(s, "unique constraint failed") ||
		strings.Contains(s, "sqlstate 23505") {
		return true, DuplicateKeyErr
	}
	if strings.Contains(s, "not-null constraint") ||
		strings.Contains(s, "sqlstate 23502") ||
		strings.Contains(s, "not null constraint failed") {
		return true, NotNullViolationErr
	}
	if strings.Contains(s, "foreign key violation") ||
		strings.Contains(s, "foreign key constraint failed") ||
		strings.Contains(s, "sqlstate 23503") {
		return true, ForeignKeyViolationErr
	}
	if strings.Contains(s, "check constraint") ||
		strings.Contains(s, "sqlstate 23514") {
		return true, CheckConstraintViolationErr
	}
	if strings.Contains(s, "string data right truncation") ||
		strings.Contains(s, "sqlstate 22001") ||
		strings.Contains(s, "data truncated") {
		return true, DataTruncatedErr
	}
	if strings.Contains(s, "datatype mismatch") ||
		strings.Contains(s, "sqlstate 42804") {
		return true, InvalidTypeCastErr
	}
	return false, UnknownErr
}
