// Package metrics provides a lightweight in-memory collector for
// per-capability invocation counters, shown by the status command.
package metrics

import (
	"sync"
	"time"
)

// Stat aggregates the outcomes of one capability's invocations.
type Stat struct {
	Invocations int64
	Failures    int64
	Total       time.Duration
}

// Mean returns the average invocation latency.
func (s Stat) Mean() time.Duration {
	if s.Invocations == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Invocations)
}

// Collector aggregates counters keyed by capability id.
type Collector struct {
	mu        sync.Mutex
	startTime time.Time
	stats     map[string]*Stat
}

func NewCollector() *Collector {
	return &Collector{startTime: time.Now(), stats: make(map[string]*Stat)}
}

// Record adds one invocation outcome.
func (c *Collector) Record(capabilityID string, elapsed time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stats[capabilityID]
	if !ok {
		s = &Stat{}
		c.stats[capabilityID] = s
	}
	s.Invocations++
	s.Total += elapsed
	if failed {
		s.Failures++
	}
}

// Snapshot returns a copy of all counters.
func (c *Collector) Snapshot() map[string]Stat {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]Stat, len(c.stats))
	for k, v := range c.stats {
		out[k] = *v
	}
	return out
}

// Uptime returns how long the collector has been running.
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.startTime)
}
