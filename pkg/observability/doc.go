/*
Package observability turns engine lifecycle hooks into Prometheus metrics and
structured log lines.

	metrics, _ := observability.NewMetrics(prometheus.NewRegistry())
	eng, _ := claire.New(
		claire.WithStore(store),
		claire.WithLifecycleHooks(metrics.Hooks().Merge(observability.LogHooks(logger))),
	)
*/
package observability
