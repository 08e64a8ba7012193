// Package prometheus exposes engine metrics as a client_golang Collector.
//
// The collector reads [authgate.Engine.MetricsSnapshot] on every scrape; it keeps
// no state of its own. Register it on any registry, or use [Handler] for a
// dedicated one.
package prometheus
