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

package resultset

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"testing"
	"time"
)

type stubConnector struct {
	cols []string
	data [][]driver.Value
}

func (c *stubConnector) Connect(context.Context) (driver.Conn, error) {
	return &stubConn{cols: c.cols, data: c.data}, nil
}
func (c *stubConnector) Driver() driver.Driver { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, driver.ErrBadConn }

type stubConn struct {
	cols []string
	data [][]driver.Value
}

func (*stubConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (*stubConn) Close() error                        { return nil }
func (*stubConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }

func (c *stubConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	return &stubRows{cols: c.cols, data: c.data}, nil
}

type stubRows struct {
	cols []string
	data [][]driver.Value
	i    int
}

func (r *stubRows) Columns() []string { return append([]string(nil), r.cols...) }
func (r *stubRows) Close() error      { return nil }
func (r *stubRows) Next(dest []driver.Value) error {
	if r.i >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.i])
	r.i++
	return nil
}

func queryRows(t *testing.T, cols []string, data [][]driver.Value) *sql.Rows {
	t.Helper()
	db := sql.OpenDB(&stubConnector{cols: cols, data: data})
	t.Cleanup(func() { _ = db.Close() })
	rows, err := db.QueryContext(context.Background(), "stub")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	t.Cleanup(func() { _ = rows.Close() })
	return rows
}

func TestMaterialize_LowerCasesColumnNames(t *testing.T) {
	rows := queryRows(t,
		[]string{"UserName", `"Quoted"`, "`Tick`", "[Bracket]"},
		[][]driver.Value{{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}},
	)
	set, err := Materialize(rows)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("expected 1 row, got %d", len(set))
	}
	for _, key := range []string{"username", "quoted", "tick", "bracket"} {
		if _, ok := set[0][key]; !ok {
			t.Fatalf("column %q missing: %v", key, set[0])
		}
	}
}

func TestMaterialize_RendersDriverValuesAsText(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := queryRows(t,
		[]string{"i", "f", "b", "s", "raw", "ts", "missing"},
		[][]driver.Value{{int64(-42), float64(2.5), true, "text", []byte{0x68, 0x69}, ts, nil}},
	)
	set, err := Materialize(rows)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	row := set[0]
	expect := map[string]string{
		"i":   "-42",
		"f":   "2.5",
		"b":   "true",
		"s":   "text",
		"raw": "hi",
		"ts":  "2025-06-01T12:00:00Z",
	}
	for col, want := range expect {
		got, ok := row.Get(col)
		if !ok || got == nil || *got != want {
			t.Fatalf("column %q: got %v, want %q", col, got, want)
		}
	}
	if v, ok := row.Get("missing"); !ok || v != nil {
		t.Fatalf("NULL cell must be present and nil, got %v %v", v, ok)
	}
}

func TestMaterialize_EmptyCursor(t *testing.T) {
	rows := queryRows(t, []string{"id"}, nil)
	set, err := Materialize(rows)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected empty set, got %v", set)
	}
}

func TestMaterialize_PreservesRowOrder(t *testing.T) {
	rows := queryRows(t, []string{"id"}, [][]driver.Value{
		{int64(1)}, {int64(2)}, {int64(3)},
	})
	set, err := Materialize(rows)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if len(set) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(set))
	}
	for i, want := range []string{"1", "2", "3"} {
		got, _ := set[i].Get("id")
		if got == nil || *got != want {
			t.Fatalf("row %d: got %v, want %s", i, got, want)
		}
	}
}

func TestFirst_ReturnsOnlyFirstRow(t *testing.T) {
	rows := queryRows(t, []string{"id"}, [][]driver.Value{
		{int64(10)}, {int64(20)},
	})
	row, err := First(rows)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	got, _ := row.Get("ID")
	if got == nil || *got != "10" {
		t.Fatalf("expected first row, got %v", got)
	}
}

func TestFirst_EmptyCursor_ReturnsNil(t *testing.T) {
	rows := queryRows(t, []string{"id"}, nil)
	row, err := First(rows)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if row != nil {
		t.Fatalf("expected nil row, got %v", row)
	}
}
