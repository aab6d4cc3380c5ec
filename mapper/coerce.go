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
	"database/sql"
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// timeLayouts are tried in order when coercing a cell into time.Time.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"15:04:05",
}

// assign coerces a textual cell into an addressable struct field. A nil cell
// (SQL NULL) leaves the field at its zero value, which for pointer fields is
// the absent value nil.
func assign(fv reflect.Value, cell *string) error {
	if cell == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}

	// Types carrying their own conversion rules come first, so sql.Null*,
	// JSON column helpers, and custom text types keep working.
	addr := fv.Addr().Interface()
	if scanner, ok := addr.(sql.Scanner); ok {
		return scanner.Scan(*cell)
	}
	if unmarshaler, ok := addr.(encoding.TextUnmarshaler); ok {
		return unmarshaler.UnmarshalText([]byte(*cell))
	}

	if fv.Kind() == reflect.Pointer {
		elem := reflect.New(fv.Type().Elem())
		if err := assign(elem.Elem(), cell); err != nil {
			return err
		}
		fv.Set(elem)
		return nil
	}

	return coerce(fv, *cell)
}

func coerce(fv reflect.Value, text string) error {
	t := fv.Type()
	if t == timeType {
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, text); err == nil {
				fv.Set(reflect.ValueOf(ts))
				return nil
			}
		}
		return fmt.Errorf("cannot parse %q as time", text)
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(text)
		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return fmt.Errorf("cannot parse %q as bool", text)
		}
		fv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 10, t.Bits())
		if err != nil {
			return fmt.Errorf("cannot parse %q as %s", text, t.Kind())
		}
		fv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(text, 10, t.Bits())
		if err != nil {
			return fmt.Errorf("cannot parse %q as %s", text, t.Kind())
		}
		fv.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, t.Bits())
		if err != nil {
			return fmt.Errorf("cannot parse %q as %s", text, t.Kind())
		}
		fv.SetFloat(f)
		return nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			fv.SetBytes([]byte(text))
			return nil
		}
	}
	return fmt.Errorf("unsupported field type %s", t)
}
