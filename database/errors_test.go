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
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestIsSqlError_MySQLNumbers(t *testing.T) {
	cases := []struct {
		number uint16
		want   SQLError
	}{
		{1305, NoProcedureErr},
		{1318, ParamMismatchErr},
		{1054, NoColumnErr},
		{1062, DuplicateKeyErr},
		{1146, NoTableErr},
		{9999, UnknownErr},
	}
	for _, tc := range cases {
		err := &mysql.MySQLError{Number: tc.number, Message: "x"}
		is, kind := IsSqlError(err)
		if !is || kind != tc.want {
			t.Fatalf("number %d: got (%v, %v), want (true, %v)", tc.number, is, kind, tc.want)
		}
	}
}

func TestIsSqlError_MessageFallbacks(t *testing.T) {
	cases := []struct {
		msg  string
		want SQLError
	}{
		{"ERROR: function get_user(integer) does not exist (SQLSTATE 42883)", NoProcedureErr},
		{"ERROR: column \"nope\" does not exist (SQLSTATE 42703)", NoColumnErr},
		{"no such table: users", NoTableErr},
		{"duplicate key value violates unique constraint", DuplicateKeyErr},
	}
	for _, tc := range cases {
		is, kind := IsSqlError(errors.New(tc.msg))
		if !is || kind != tc.want {
			t.Fatalf("%q: got (%v, %v), want (true, %v)", tc.msg, is, kind, tc.want)
		}
	}
}

func TestIsSqlError_Unclassified(t *testing.T) {
	is, kind := IsSqlError(errors.New("network unreachable"))
	if is || kind != UnknownErr {
		t.Fatalf("expected unclassified, got (%v, %v)", is, kind)
	}
	if is, _ := IsSqlError(nil); is {
		t.Fatal("nil error must not classify")
	}
}

func TestProcedureError_WrapsDriverError(t *testing.T) {
	cause := &mysql.MySQLError{Number: 1305, Message: "PROCEDURE x does not exist"}
	err := NewProcedureError("GetUser", cause)
	if err.Kind != NoProcedureErr {
		t.Fatalf("unexpected kind: %v", err.Kind)
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable via errors.Is")
	}
	var target *mysql.MySQLError
	if !errors.As(err, &target) {
		t.Fatal("cause not reachable via errors.As")
	}
}

func TestConnectionError_Message(t *testing.T) {
	err := NewConnectionError("orders", fmt.Errorf("dial tcp: refused"))
	if err.Error() == "" || err.Unwrap() == nil {
		t.Fatalf("unexpected error shape: %v", err)
	}
}
