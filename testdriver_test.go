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

package procall

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	"github.com/tomoncle/procall/database"
)

// fakeHandler answers one statement from the in-memory engine.
type fakeHandler func(query string, args []driver.NamedValue) (cols []string, rows [][]driver.Value, err error)

var fakeEngine = struct {
	mu      sync.Mutex
	handler fakeHandler
	queries []string
	args    [][]driver.Value
}{}

// setFakeHandler installs the statement handler and resets recordings.
func setFakeHandler(h fakeHandler) {
	fakeEngine.mu.Lock()
	defer fakeEngine.mu.Unlock()
	fakeEngine.handler = h
	fakeEngine.queries = nil
	fakeEngine.args = nil
}

func recordedCalls() ([]string, [][]driver.Value) {
	fakeEngine.mu.Lock()
	defer fakeEngine.mu.Unlock()
	return append([]string(nil), fakeEngine.queries...), append([][]driver.Value(nil), fakeEngine.args...)
}

func dispatch(query string, args []driver.NamedValue) ([]string, [][]driver.Value, error) {
	fakeEngine.mu.Lock()
	h := fakeEngine.handler
	fakeEngine.queries = append(fakeEngine.queries, query)
	vals := make([]driver.Value, len(args))
	for i, a := range args {
		vals[i] = a.Value
	}
	fakeEngine.args = append(fakeEngine.args, vals)
	fakeEngine.mu.Unlock()
	if h == nil {
		return nil, nil, errors.New("no fake handler installed")
	}
	return h(query, args)
}

type fakeConnector struct{}

func (fakeConnector) Connect(context.Context) (driver.Conn, error) { return &fakeConn{}, nil }
func (fakeConnector) Driver() driver.Driver                        { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) { return &fakeConn{}, nil }

type fakeConn struct{}

func (*fakeConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (*fakeConn) Close() error                        { return nil }
func (*fakeConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }

func (*fakeConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	cols, data, err := dispatch(query, args)
	if err != nil {
		return nil, err
	}
	return &fakeRows{cols: cols, data: data}, nil
}

func (*fakeConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if _, _, err := dispatch(query, args); err != nil {
		return nil, err
	}
	return driver.RowsAffected(1), nil
}

type fakeRows struct {
	cols []string
	data [][]driver.Value
	i    int
}

func (r *fakeRows) Columns() []string { return append([]string(nil), r.cols...) }
func (r *fakeRows) Close() error      { return nil }
func (r *fakeRows) Next(dest []driver.Value) error {
	if r.i >= len(r.data) {
		return io.EOF
	}
	row := r.data[r.i]
	for i := range dest {
		if i < len(row) {
			dest[i] = row[i]
		} else {
			dest[i] = nil
		}
	}
	r.i++
	return nil
}

func init() {
	database.EnableCallTraceSilent(true)
	database.RegisterOpener("fake", func(*database.ConnectionConfig) (*bun.DB, error) {
		return bun.NewDB(sql.OpenDB(fakeConnector{}), mysqldialect.New()), nil
	})
	database.Register("unit", &database.ConnectionConfig{Type: "fake", DBName: "unit"})
}
