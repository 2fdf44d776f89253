// Package metrics provides the observability hooks of the markdown engine.
//
// # Design Philosophy
//
// This package implements the Null Object pattern to enable metrics collection
// without requiring explicit nil checks throughout the codebase. By default,
// the Engine uses NoopRecorder which implements the Recorder interface with
// no-op methods.
//
// # Architecture
//
//  1. Recorder interface - render duration, render results, directive counts, fallbacks
//  2. NoopRecorder - default implementation that does nothing
//  3. PrometheusRecorder - client_golang implementation, namespace "docmd"
//
// # Usage Pattern
//
// The Engine receives a Recorder through an option:
//
//	recorder := metrics.NewPrometheusRecorder(prometheus.NewRegistry())
//	engine, err := markdown.New(markdown.WithRecorder(recorder))
//
// The CLI is a short-lived process, so instead of serving an HTTP endpoint it
// writes the registry to a node exporter textfile after each command:
//
//	err := metrics.WriteTextfile("/var/lib/node_exporter/docmd.prom", recorder.Registry())
package metrics
