/*
Package observability turns engine lifecycle hooks into Prometheus metrics
and structured audit logs.

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	eng, _ := simflow.New(form, simflow.WithLifecycleHooks(observability.Chain(
		metrics.Hooks(form),
		observability.LogHooks(logger),
	)))

Dynamic blocks are reported under their blueprint id, so label cardinality
does not grow with the number of copies users create.
*/
package observability
