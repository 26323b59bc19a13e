// Package metrics accumulates per-case benchmark samples and reduces
// them to summary statistics for reporting.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/AleCandido/quad/pkg/models"
	"github.com/AleCandido/quad/pkg/utils"
)

// Collector gathers named metric samples during a benchmark run.
// Samples are keyed by metric name and an optional label set, so the
// same metric can be tracked per case and aggregated globally.
type Collector struct {
	mu sync.RWMutex

	startTime time.Time
	endTime   time.Time

	// metric name -> label key -> samples
	series map[string]map[string][]float64
}

// NewCollector creates an empty collector with the clock started
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		series:    make(map[string]map[string][]float64),
	}
}

// Start resets the collection start time
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
}

// Stop marks the end of collection
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endTime = time.Now()
}

// Record appends one sample for a metric under the given labels
func (c *Collector) Record(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := labelKey(labels)
	if c.series[name] == nil {
		c.series[name] = make(map[string][]float64)
	}
	c.series[name][key] = append(c.series[name][key], value)
}

// Samples returns a copy of the samples recorded for a metric under the
// given labels, in recording order
func (c *Collector) Samples(name string, labels map[string]string) []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.series[name] == nil {
		return nil
	}
	values := c.series[name][labelKey(labels)]
	if values == nil {
		return nil
	}
	out := make([]float64, len(values))
	copy(out, values)
	return out
}

// Aggregate reduces one metric's samples under the given labels to
// summary statistics, or nil when nothing was recorded
func (c *Collector) Aggregate(name string, labels map[string]string) *models.Aggregation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.series[name] == nil {
		return nil
	}
	return aggregate(c.series[name][labelKey(labels)])
}

// AggregateAll reduces one metric's samples across every label set
func (c *Collector) AggregateAll(name string) *models.Aggregation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.series[name] == nil {
		return nil
	}
	all := make([]float64, 0)
	for _, values := range c.series[name] {
		all = append(all, values...)
	}
	return aggregate(all)
}

// Names returns all recorded metric names, sorted
func (c *Collector) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary returns the cross-label aggregation of every metric together
// with the collection window
func (c *Collector) Summary() *models.MetricsSummary {
	c.mu.RLock()
	end := c.endTime
	if end.IsZero() {
		end = time.Now()
	}
	summary := &models.MetricsSummary{
		StartTime:    c.startTime,
		EndTime:      end,
		Duration:     end.Sub(c.startTime),
		Aggregations: make(map[string]*models.Aggregation),
	}
	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}
	c.mu.RUnlock()

	for _, name := range names {
		if agg := c.AggregateAll(name); agg != nil {
			summary.Aggregations[name] = agg
		}
	}
	return summary
}

// Clear drops all samples and restarts the clock
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series = make(map[string]map[string][]float64)
	c.startTime = time.Now()
	c.endTime = time.Time{}
}

// labelKey builds a deterministic map key from a label set
func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	key := ""
	for _, k := range keys {
		key += k + "=" + labels[k] + ","
	}
	return key
}

// aggregate reduces a sample slice to summary statistics
func aggregate(values []float64) *models.Aggregation {
	if len(values) == 0 {
		return nil
	}

	min := values[0]
	max := values[0]
	for _, v := range values {
		min = utils.MinFloat64(min, v)
		max = utils.MaxFloat64(max, v)
	}

	return &models.Aggregation{
		Count: int64(len(values)),
		Sum:   utils.Sum(values),
		Min:   min,
		Max:   max,
		Mean:  utils.Mean(values),
		P50:   utils.P50(values),
		P95:   utils.P95(values),
		P99:   utils.Percentile(values, 99),
	}
}
