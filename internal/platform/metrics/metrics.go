package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	mu           sync.Mutex
	calculations map[string]uint64
	negativeNet  uint64
}

func New() *Collector {
	return &Collector{calculations: map[string]uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordCalculation counts one computed record per resolved region.
func (c *Collector) RecordCalculation(region string, negativeNet bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.calculations[region]++
	c.mu.Unlock()
	if negativeNet {
		atomic.AddUint64(&c.negativeNet, 1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	byRegion := make(map[string]uint64, len(c.calculations))
	for region, n := range c.calculations {
		byRegion[region] = n
	}
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":     total,
		"errorsTotal":       errs,
		"rateLimitedTotal":  limited,
		"avgDurationMs":     avg,
		"totalDurationMs":   totalMs,
		"calculationsTotal": byRegion,
		"negativeNetTotal":  atomic.LoadUint64(&c.negativeNet),
	}
}
