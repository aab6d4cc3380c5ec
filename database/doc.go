// Package database resolves connection descriptors and opens scoped,
// single-call database connections built on top of Bun, with configuration
// loading, environment overrides, query hooks, and error classification.
package database
