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
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/uptrace/bun/dialect"

	"github.com/tomoncle/procall/types"
)

// boundParams carries parameter names and their values in binding order.
// For structs the order is field declaration order; for maps the keys are
// sorted so that positional binding stays deterministic.
type boundParams struct {
	names  []string
	values []any
}

// bindParams turns a parameter bag into named parameters, one per exported
// field. Field names are used verbatim; nil pointers bind SQL NULL. A nil
// bag binds zero parameters. Accepted shapes: struct, *struct, and
// map[string]any.
func bindParams(params any) (*boundParams, error) {
	bp := &boundParams{}
	if params == nil {
		return bp, nil
	}
	rv := reflect.ValueOf(params)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return bp, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if sf.PkgPath != "" { // unexported
				continue
			}
			bp.names = append(bp.names, sf.Name)
			bp.values = append(bp.values, fieldValue(rv.Field(i)))
		}
		return bp, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("parameter map keys must be strings, got %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			bp.names = append(bp.names, k)
			bp.values = append(bp.values, fieldValue(rv.MapIndex(reflect.ValueOf(k))))
		}
		return bp, nil
	default:
		return nil, fmt.Errorf("parameter bag must be a struct or map[string]any, got %s", rv.Kind())
	}
}

func fieldValue(fv reflect.Value) any {
	if fv.Kind() == reflect.Interface && !fv.IsNil() {
		fv = fv.Elem()
	}
	if fv.Kind() == reflect.Pointer && fv.IsNil() {
		return nil
	}
	if !fv.IsValid() {
		return nil
	}
	return fv.Interface()
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$.]*$`)

// renderCall produces the dialect-specific invocation statement with Bun
// `?` placeholders and the values to bind; Bun's formatter turns each
// placeholder into a dialect-escaped literal before the statement reaches
// the driver. Procedure and parameter names are validated first.
//
// PostgreSQL result-returning routines are set-returning functions invoked
// through SELECT with named notation; result-less calls use CALL. Every
// other dialect gets CALL with parameters bound in declaration order, and
// engines without stored procedures reject the statement themselves.
func renderCall(d dialect.Name, procedure string, bp *boundParams, cardinality types.Cardinality) (string, []any, error) {
	if !identPattern.MatchString(procedure) {
		return "", nil, fmt.Errorf("invalid procedure name %q", procedure)
	}
	for _, name := range bp.names {
		if !identPattern.MatchString(name) {
			return "", nil, fmt.Errorf("invalid parameter name %q", name)
		}
	}

	var sb strings.Builder
	if d == dialect.PG {
		// Unquoted routine argument names fold to lower case in PostgreSQL.
		if cardinality == types.CardinalityNone {
			sb.WriteString("CALL ")
			sb.WriteString(procedure)
		} else {
			sb.WriteString("SELECT * FROM ")
			sb.WriteString(procedure)
		}
		sb.WriteString("(")
		for i, name := range bp.names {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strings.ToLower(name))
			sb.WriteString(" := ?")
		}
		sb.WriteString(")")
		return sb.String(), bp.values, nil
	}

	sb.WriteString("CALL ")
	sb.WriteString(procedure)
	sb.WriteString("(")
	for i := range bp.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("?")
	}
	sb.WriteString(")")
	return sb.String(), bp.values, nil
}
