// Package metrics defines the sinks that record engine activity. Sinks such
// as the Prometheus and InfluxDB ones record detection passes, mutations and
// refreshes and can be combined with NewMultiSink. NewMetricsSink returns a
// MultiSink automatically when several sinks are configured.
package metrics
