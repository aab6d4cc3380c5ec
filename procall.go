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

// Package procall invokes stored procedures by name with parameters bound
// from a caller-supplied bag and maps tabular results into caller-supplied
// struct types. Each call resolves its connection descriptor, opens a fresh
// connection, executes exactly one procedure, and releases the connection on
// every exit path. No retries are performed at this layer.
package procall

import (
	"context"

	"github.com/google/uuid"

	"github.com/tomoncle/procall/database"
	"github.com/tomoncle/procall/mapper"
	"github.com/tomoncle/procall/resultset"
	"github.com/tomoncle/procall/types"
	"github.com/tomoncle/procall/utils"
)

var logger = utils.NewLogger("PROCALL")

// FetchOne invokes a procedure expected to return at most one row and maps
// it into a T. It returns (nil, nil) when the result set is empty. If the
// procedure returns more than one row, only the first row is kept and the
// rest are ignored; the row count is deliberately not validated.
//
// params may be nil, a struct, *struct, or map[string]any; every exported
// field binds one parameter under its verbatim name.
func FetchOne[T any](ctx context.Context, conn, procedure string, params any) (*T, error) {
	set, err := invoke(ctx, conn, procedure, params, types.CardinalityOne)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, nil
	}
	out := mapper.MapRow[T](set[0])
	return &out, nil
}

// FetchMany invokes a procedure and maps every returned row into a T,
// preserving cursor traversal order. Zero rows yield an empty slice.
func FetchMany[T any](ctx context.Context, conn, procedure string, params any) ([]T, error) {
	set, err := invoke(ctx, conn, procedure, params, types.CardinalityMany)
	if err != nil {
		return nil, err
	}
	return mapper.MapRows[T](set), nil
}

// Run invokes a procedure with no expectation of a result set. Any rows the
// procedure happens to return are discarded.
func Run(ctx context.Context, conn, procedure string, params any) error {
	_, err := invoke(ctx, conn, procedure, params, types.CardinalityNone)
	return err
}

// invoke is the shared round-trip: resolve and open the connection, bind
// the parameter bag, execute, and materialize according to the advisory
// cardinality. The connection is released on every path.
func invoke(ctx context.Context, conn, procedure string, params any, cardinality types.Cardinality) (resultset.RowSet, error) {
	c, err := database.Connect(ctx, conn)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()

	bp, err := bindParams(params)
	if err != nil {
		return nil, database.NewProcedureError(procedure, err)
	}
	stmt, args, err := renderCall(c.Dialect(), procedure, bp, cardinality)
	if err != nil {
		return nil, database.NewProcedureError(procedure, err)
	}

	callID := uuid.NewString()
	logger.Debugf("call_id=%s conn=%s cardinality=%s stmt=%s", callID, conn, cardinality, stmt)

	if cardinality == types.CardinalityNone {
		if _, err := c.DB().ExecContext(ctx, stmt, args...); err != nil {
			logger.Warnf("call_id=%s procedure %s rejected: %v", callID, procedure, err)
			return nil, database.NewProcedureError(procedure, err)
		}
		return nil, nil
	}

	rows, err := c.DB().QueryContext(ctx, stmt, args...)
	if err != nil {
		logger.Warnf("call_id=%s procedure %s rejected: %v", callID, procedure, err)
		return nil, database.NewProcedureError(procedure, err)
	}
	defer func() { _ = rows.Close() }()

	var set resultset.RowSet
	if cardinality == types.CardinalityOne {
		row, ferr := resultset.First(rows)
		if ferr != nil {
			return nil, database.NewProcedureError(procedure, ferr)
		}
		if row != nil {
			set = resultset.RowSet{row}
		}
	} else {
		set, err = resultset.Materialize(rows)
		if err != nil {
			return nil, database.NewProcedureError(procedure, err)
		}
	}
	return set, nil
}
