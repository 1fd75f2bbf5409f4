// Package metrics exposes pipeline counters and gauges over a Prometheus
// scrape endpoint. Collectors are registered at package init so recording
// works whether or not the HTTP server is enabled.
package metrics
