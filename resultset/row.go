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
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// Row maps a lower-cased column name to the cell's textual value. A nil
// entry marks an SQL NULL.
type Row map[string]*string

// RowSet holds every row from a single procedure invocation, in cursor
// traversal order.
type RowSet []Row

// Get returns the cell for a column and whether the column exists.
// A (nil, true) result means the column is present but NULL.
func (r Row) Get(column string) (*string, bool) {
	v, ok := r[toLowerAscii(column)]
	return v, ok
}

// Materialize walks every row of the cursor and flattens it into a RowSet.
// The cursor is not closed here; callers own its lifecycle.
func Materialize(rows *sql.Rows) (RowSet, error) {
	return materialize(rows, 0)
}

// First flattens only the first row of the cursor, or returns nil when the
// result set is empty. Remaining rows are left unread.
func First(rows *sql.Rows) (Row, error) {
	set, err := materialize(rows, 1)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, nil
	}
	return set[0], nil
}

func materialize(rows *sql.Rows, limit int) (RowSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = normalizeColumn(c)
	}

	var set RowSet
	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, name := range names {
			row[name] = renderCell(raw[i])
		}
		set = append(set, row)
		if limit > 0 && len(set) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// renderCell turns a driver value into its textual representation, or nil
// for SQL NULL.
func renderCell(v any) *string {
	if v == nil {
		return nil
	}
	var s string
	switch val := v.(type) {
	case []byte:
		s = string(val)
	case string:
		s = val
	case int64:
		s = strconv.FormatInt(val, 10)
	case float64:
		s = strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		s = strconv.FormatBool(val)
	case time.Time:
		s = val.Format(time.RFC3339Nano)
	default:
		s = fmt.Sprintf("%v", val)
	}
	return &s
}

// normalizeColumn trims one layer of identifier quoting and lower-cases the
// name, so "UserName", `UserName` and [UserName] all key as username.
func normalizeColumn(s string) string {
	if l := len(s); l >= 2 {
		switch s[0] {
		case '"':
			if s[l-1] == '"' {
				s = s[1 : l-1]
			}
		case '`':
			if s[l-1] == '`' {
				s = s[1 : l-1]
			}
		case '[':
			if s[l-1] == ']' {
				s = s[1 : l-1]
			}
		}
	}
	return toLowerAscii(s)
}

func toLowerAscii(s string) string {
	var need bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			need = true
			break
		}
	}
	if !need {
		return s
	}
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c = c + ('a' - 'A')
		}
		b[i] = c
	}
	return string(b)
}
