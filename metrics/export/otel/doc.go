// Package otel publishes engine metrics through OpenTelemetry asynchronous
// instruments. Callers own the MeterProvider and pass in a Meter; one callback
// reads the engine snapshot per collection cycle.
package otel
