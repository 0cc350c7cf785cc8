// Package metrics provides Prometheus instrumentation for the proxy.
//
// A Collector owns its own registry and exposes counters and histograms for
// request outcomes, upstream attempt outcomes, fallback promotions, and token
// throughput. It plugs into both the HTTP handler layer and the model
// dispatcher:
//
//	collector := metrics.NewCollector(nil)
//	dispatcher := routing.NewDispatcher(client, state, routing.WithObserver(collector))
//	mux.Handle("/metrics", collector.Handler())
package metrics
