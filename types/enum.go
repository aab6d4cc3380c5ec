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

package types

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// Cardinality states how many result rows a procedure call is expected to
// produce. It is advisory: the database is never asked to verify it.
type Cardinality int

const (
	// CardinalityNone expects no result set; any returned rows are discarded.
	CardinalityNone Cardinality = iota
	// CardinalityOne expects at most one row; extra rows are ignored.
	CardinalityOne
	// CardinalityMany expects any number of rows.
	CardinalityMany
)

func (c Cardinality) IsValid() bool {
	return c >= CardinalityNone && c <= CardinalityMany
}

func (c Cardinality) Number() int { return int(c) }

func (c Cardinality) Name() string { return c.String() }

func (c Cardinality) String() string {
	switch c {
	case CardinalityNone:
		return "none"
	case CardinalityOne:
		return "one"
	case CardinalityMany:
		return "many"
	default:
		return IllegalName
	}
}

func (c Cardinality) Desc() string {
	switch c {
	case CardinalityNone:
		return "no result set expected"
	case CardinalityOne:
		return "at most one row expected"
	case CardinalityMany:
		return "zero or more rows expected"
	default:
		return IllegalDesc
	}
}
