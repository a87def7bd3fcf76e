// Package exporter writes computed program views to JSON and CSV. Exports
// are deterministic: no timestamps, sorted distribution labels, registry
// order for rows.
package exporter
