// Package resultset flattens driver-native result cursors into rows keyed by
// lower-cased column name with cell values rendered as text. It performs no
// type coercion, so one materialized row can serve any requested target type.
package resultset
