// Package mapper populates caller-supplied struct types from materialized
// result rows. Columns and fields are matched case-insensitively, cell text
// is coerced into the declared field type, and a failure on one field never
// aborts the rest of the row.
package mapper
