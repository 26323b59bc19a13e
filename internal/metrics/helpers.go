package metrics

// Common metric names
const (
	MetricBatchDurationMs  = "batch_duration_ms"
	MetricScalarDurationMs = "scalar_duration_ms"
	MetricSpeedup          = "speedup"
	MetricEvaluations      = "evaluations"
	MetricSubdivisions     = "subdivisions"
	MetricErrorBound       = "error_bound"
)

// CaseLabels builds the label set for one benchmark case
func CaseLabels(name string) map[string]string {
	return map[string]string{
		"case": name,
	}
}

// RecordRun records the work and accuracy figures of one integration run
func RecordRun(c *Collector, labels map[string]string, evaluations, subdivisions int, errorBound float64) {
	c.Record(MetricEvaluations, float64(evaluations), labels)
	c.Record(MetricSubdivisions, float64(subdivisions), labels)
	c.Record(MetricErrorBound, errorBound, labels)
}
