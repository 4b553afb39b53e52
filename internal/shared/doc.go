// Package shared holds helpers used by several packages of the dashboard
// backend. Its testutil subpackage provides the in-memory snapshot fixtures
// (workbooks built with excelize and stored in a memory object store) and a
// buffered slog handler for asserting on structured log output.
package shared
