/*
Package observability turns host lifecycle events into Prometheus metrics.

A Metrics value is fed through domain.LifecycleHooks, so it composes with any
other hook set via domain.MergeHooks:

	m := observability.NewMetrics(prometheus.NewRegistry())
	host, _ := vine.New(vine.WithLifecycleHooks(m.Hooks()))
	http.Handle("/metrics", m.Handler())
*/
package observability
