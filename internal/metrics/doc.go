// Package metrics provides an observability framework for build metrics.
//
// # Design Philosophy
//
// This package implements the Null Object pattern to enable metrics collection
// without requiring explicit nil checks throughout the codebase. By default,
// all components use NoopRecorder which implements the Recorder interface with
// no-op methods that inline to nothing at compile time.
//
// # Architecture
//
// The metrics system has three components:
//
//  1. Recorder interface - Defines all metrics operations
//  2. NoopRecorder - Default implementation that does nothing (zero overhead)
//  3. Real implementations - Prometheus adapter (activated when needed)
//
// # Usage Pattern
//
// Components receive a Recorder through dependency injection:
//
//	type Pipeline struct {
//	    recorder metrics.Recorder
//	}
//
// To enable metrics, swap NoopRecorder for a real implementation:
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//
// This approach allows:
//   - Zero overhead when metrics are disabled (noop methods inline away)
//   - Metrics activation without code changes (just swap implementation)
//   - Clean testing (inject mock recorder for verification)
package metrics
