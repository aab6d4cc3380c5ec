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

package mapper

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/tomoncle/procall/resultset"
	"github.com/tomoncle/procall/utils"
)

var logger = utils.NewLogger("MAPPER")

// FieldError reports that one field of one row could not be populated. It is
// contained inside MapRow: the field keeps its zero value, the error is
// logged, and mapping continues.
type FieldError struct {
	Field  string
	Column string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("mapper: field %s (column %s): %v", e.Field, e.Column, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

type fieldDesc struct {
	index  int
	name   string // struct field name
	column string // lower-cased match key
}

type fieldIndex struct {
	fields []fieldDesc
}

var indexCache sync.Map // reflect.Type -> *fieldIndex

// indexFor builds (or fetches) the column-match index for a struct type.
// Fields bind by `db:"name"` tag first, otherwise by case-insensitive field
// name; `db:"-"` omits a field. First declaration wins on duplicates.
func indexFor(rt reflect.Type) *fieldIndex {
	if v, ok := indexCache.Load(rt); ok {
		return v.(*fieldIndex)
	}
	idx := &fieldIndex{}
	seen := make(map[string]struct{})
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		name := sf.Tag.Get("db")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		column := toLowerAscii(name)
		if _, dup := seen[column]; dup {
			continue
		}
		seen[column] = struct{}{}
		idx.fields = append(idx.fields, fieldDesc{index: i, name: sf.Name, column: column})
	}
	indexCache.Store(rt, idx)
	return idx
}

// MapRow default-constructs one T and populates every field whose match key
// also appears as a column of the row. Columns without a matching field are
// ignored; fields without a matching column keep their zero value. A cell
// that cannot be coerced leaves its field at the zero value and is logged.
func MapRow[T any](row resultset.Row) T {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	if rv.Kind() != reflect.Struct {
		logger.Warnf("target type %T is not a struct, returning zero value", out)
		return out
	}
	idx := indexFor(rv.Type())
	for _, f := range idx.fields {
		cell, ok := row[f.column]
		if !ok {
			continue
		}
		if err := assign(rv.Field(f.index), cell); err != nil {
			fe := &FieldError{Field: f.name, Column: f.column, Err: err}
			logger.Warn(fe.Error())
		}
	}
	return out
}

// MapRows maps every row of the set, preserving traversal order.
func MapRows[T any](set resultset.RowSet) []T {
	out := make([]T, 0, len(set))
	for _, row := range set {
		out = append(out, MapRow[T](row))
	}
	return out
}

func toLowerAscii(s string) string {
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
