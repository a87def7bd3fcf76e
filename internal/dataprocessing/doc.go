// Package dataprocessing turns the yearly quality-assurance import workbook
// into per-program metric views for the dashboard.
//
// # Architecture
//
// The package is organized into four components:
//
//  1. Parser: validates the fixed sheet layout and extracts one normalized
//     table per data category
//  2. Registry: derives the ordered set of degree programs and enforces
//     cross-table consistency
//  3. Engine: computes the twelve per-program metrics, including the
//     many-to-many module join
//  4. Pipeline: wires source discovery, parsing, registry and engine into
//     one batch run
//
// # Data flow
//
//	Import workbook → Parser → Tables → Registry → Engine → MetricsView per program
//
// # Error handling
//
// Structural failures (missing headers, unknown program references) abort
// the whole run with the offending file, category and cell location.
// Individual blank cells are missing data, carried as sentinels through to
// the views and never coerced to zero.
package dataprocessing
